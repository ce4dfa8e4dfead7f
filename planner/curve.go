package planner

import (
	"errors"

	"github.com/cnkei/gospline"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

var (
	ErrDegenerateAnchors = errors.New("planner: fewer than 2 anchors with increasing local x")
)

// Curve 局部坐标系下的一元曲线 y = f(x)
type Curve interface {
	At(x float64) float64
}

// fittedCurve 通过锚点的插值曲线
// 说明：锚点范围内使用三次样条（2个锚点时为线性插值），端点及范围外按端点斜率线性外推
type fittedCurve struct {
	inner          func(x float64) float64
	x0, xn         float64
	y0, yn         float64
	slope0, slopeN float64
}

func (c *fittedCurve) At(x float64) float64 {
	switch {
	case x <= c.x0:
		return c.y0 + c.slope0*(x-c.x0)
	case x >= c.xn:
		return c.yn + c.slopeN*(x-c.xn)
	default:
		return c.inner(x)
	}
}

// straightAhead 沿参考航向的直线，锚点退化时使用
type straightAhead struct{}

func (straightAhead) At(float64) float64 { return 0 }

// fitCurve 曲线拟合
// 功能：用自然三次样条拟合通过局部坐标系锚点的曲线
// 参数：anchors-局部坐标系下的锚点
// 返回：拟合得到的曲线；有效锚点不足2个时返回ErrDegenerateAnchors
// 算法说明：
// 1. 依次保留x严格大于上一个保留锚点的锚点，其余锚点丢弃
// 2. 保留3个及以上锚点时拟合自然三次样条，2个时线性插值
// 3. 记录两端的值与斜率，供范围外线性外推使用
func fitCurve(anchors []entity.Point) (Curve, error) {
	xs := make([]float64, 0, len(anchors))
	ys := make([]float64, 0, len(anchors))
	for _, a := range anchors {
		if len(xs) > 0 && a.X <= xs[len(xs)-1] {
			log.Warnf("drop anchor %v: local x not increasing", a)
			continue
		}
		xs = append(xs, a.X)
		ys = append(ys, a.Y)
	}
	n := len(xs)
	if n < 2 {
		return nil, ErrDegenerateAnchors
	}
	c := &fittedCurve{
		x0: xs[0], xn: xs[n-1],
		y0: ys[0], yn: ys[n-1],
	}
	if n == 2 {
		slope := (ys[1] - ys[0]) / (xs[1] - xs[0])
		c.inner = func(x float64) float64 { return ys[0] + slope*(x-xs[0]) }
		c.slope0, c.slopeN = slope, slope
		return c, nil
	}
	c.inner = gospline.NewCubicSpline(xs, ys).At
	h0 := (xs[1] - xs[0]) * 1e-4
	hn := (xs[n-1] - xs[n-2]) * 1e-4
	c.slope0 = (c.inner(xs[0]+h0) - ys[0]) / h0
	c.slopeN = (ys[n-1] - c.inner(xs[n-1]-hn)) / hn
	return c, nil
}
