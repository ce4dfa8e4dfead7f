package planner

import (
	"math"

	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

// minTangentLength 两个切向锚点的最小间距（米），小于该值时航向改用车辆上报值
const minTangentLength = 1e-6

// buildAnchors 构造锚点
// 功能：生成用于曲线拟合的5个锚点以及局部坐标系
// 参数：roadway-道路坐标服务，v-本车状态（s已替换为保留轨迹终点），prev-保留轨迹，lane-目标车道
// 返回：锚点（全局坐标，沿行驶方向排列），局部坐标系
// 算法说明：
// 1. 保留轨迹不足2个点时，以车辆当前位置为参考点，沿航向后退1米补一个点，使曲线与当前航向相切
// 2. 否则以保留轨迹最后两个点为切向点，参考点取最后一个点，航向取两点连线方向
// 3. 在车道中心线上s+30、s+60、s+90处各取一个点，经道路坐标服务转为笛卡尔坐标
func buildAnchors(roadway entity.IRoadway, v entity.VehicleState, prev []entity.Point, lane int) ([]entity.Point, Frame) {
	anchors := make([]entity.Point, 0, 2+anchorCount)
	var frame Frame
	if n := len(prev); n < 2 {
		frame = Frame{Origin: entity.Point{X: v.X, Y: v.Y}, Yaw: v.Yaw}
		sin, cos := math.Sincos(v.Yaw)
		anchors = append(anchors,
			entity.Point{X: v.X - cos, Y: v.Y - sin},
			frame.Origin,
		)
	} else {
		ref, refPrev := prev[n-1], prev[n-2]
		frame = Frame{Origin: ref, Yaw: v.Yaw}
		if ref.Sub(refPrev).Len() > minTangentLength {
			frame.Yaw = math.Atan2(ref.Y-refPrev.Y, ref.X-refPrev.X)
		} else {
			// 轨迹停在原地，两点重合时无法给出航向
			log.Debugf("tangent points %v and %v coincide, keep reported yaw %.3f", refPrev, ref, v.Yaw)
		}
		anchors = append(anchors, refPrev, ref)
	}
	d := laneCenter(lane)
	for i := 1; i <= anchorCount; i++ {
		anchors = append(anchors, roadway.ToCartesian(v.S+anchorSpacing*float64(i), d))
	}
	return anchors, frame
}
