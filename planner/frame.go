package planner

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

// Frame 车辆局部坐标系
// 功能：以参考点为原点、参考航向为x轴正方向的局部坐标系
// 说明：在局部坐标系中锚点的x坐标严格递增，曲线拟合才是良定义的
type Frame struct {
	Origin entity.Point // 参考点（全局坐标）
	Yaw    float64      // 参考航向（弧度）
}

// ToLocal 全局坐标转局部坐标：local = R(-yaw)·(global - origin)
func (f Frame) ToLocal(p entity.Point) entity.Point {
	d := p.Sub(f.Origin)
	sin, cos := math.Sincos(-f.Yaw)
	return entity.Point{
		X: d.X*cos - d.Y*sin,
		Y: d.X*sin + d.Y*cos,
	}
}

// ToGlobal 局部坐标转全局坐标，ToLocal的逆变换
func (f Frame) ToGlobal(p entity.Point) entity.Point {
	sin, cos := math.Sincos(f.Yaw)
	return entity.Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}.Add(f.Origin)
}

// ToLocalAll 批量转换到局部坐标
func (f Frame) ToLocalAll(ps []entity.Point) []entity.Point {
	return lo.Map(ps, func(p entity.Point, _ int) entity.Point {
		return f.ToLocal(p)
	})
}
