package planner

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

// laneCenter 车道中心线的横向偏移，车道从道路右侧边缘开始编号
func laneCenter(lane int) float64 {
	return LaneWidth/2 + LaneWidth*float64(lane)
}

// inLane 判断横向偏移d是否落在车道内（开区间，边界上的车辆不算在车道内）
func inLane(d float64, lane int) bool {
	c := laneCenter(lane)
	return d < c+LaneWidth/2 && d > c-LaneWidth/2
}

// scanTraffic 前车过近检测
// 功能：判断目标车道内是否有车辆在本车保留轨迹终点时刻位于前方跟车距离之内
// 参数：traffic-周边车辆观测，lane-目标车道，egoS-本车纵向位置（有保留轨迹时为轨迹终点s），
// retained-上周期轨迹中未被消费的点数，maxS-闭环道路总长（0表示非闭环）
// 返回：是否存在过近的前车
// 算法说明：
// 1. 按横向偏移筛选目标车道内的车辆
// 2. 以匀速假设将其纵向位置外推retained个周期：s + retained × 0.02 × |v|
// 3. 外推位置在本车前方且间距严格小于FollowingGap时判定为过近
// 说明：闭环道路上间距按总长取余，跨越起点的前车同样可以被识别
func scanTraffic(traffic []entity.TrafficObservation, lane int, egoS float64, retained int, maxS float64) bool {
	horizon := float64(retained) * CycleDuration
	return lo.SomeBy(traffic, func(o entity.TrafficObservation) bool {
		if !inLane(o.D, lane) {
			return false
		}
		gap := o.S + horizon*o.V() - egoS
		if maxS > 0 {
			gap = math.Remainder(gap, maxS)
		}
		if gap > 0 && gap < FollowingGap {
			log.Debugf("vehicle %d in lane %d is %.2fm ahead", o.ID, lane, gap)
			return true
		}
		return false
	})
}
