package planner

import (
	"math"

	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

// discretize 轨迹离散化
// 功能：将保留轨迹与曲线上新采样的点拼接为固定长度的轨迹
// 参数：curve-局部坐标系曲线，prev-保留轨迹，frame-局部坐标系，refV-参考速度
// 返回：PathPoints个点的轨迹，相邻点时间间隔CycleDuration
// 算法说明：
// 1. 原样复制保留轨迹，保证已下发部分的连续性
// 2. 取局部x=lookaheadX处的曲线点，以原点到该点的弦长近似曲线弧长
// 3. 按参考速度计算每周期行驶距离，得到局部x的均匀步长
// 4. 依次在曲线上采样并转回全局坐标，直到轨迹达到PathPoints个点
// 说明：弦长近似在车道保持/平缓变道的几何下误差很小，需要更高精度时可对曲线做数值积分
func discretize(curve Curve, prev []entity.Point, frame Frame, refV float64) []entity.Point {
	path := make([]entity.Point, 0, PathPoints)
	if len(prev) > PathPoints {
		log.Warnf("previous path has %d points, keep the first %d", len(prev), PathPoints)
		prev = prev[:PathPoints]
	}
	path = append(path, prev...)

	targetY := curve.At(lookaheadX)
	targetDist := math.Hypot(lookaheadX, targetY)
	// 每周期行驶距离 = CycleDuration × refV / speedConversion，对应的局部x步长按弦长等比缩放
	step := lookaheadX * CycleDuration * refV / speedConversion / targetDist

	x := 0.0
	for len(path) < PathPoints {
		x += step
		path = append(path, frame.ToGlobal(entity.Point{X: x, Y: curve.At(x)}))
	}
	return path
}
