// 单车短时轨迹规划：每个规划周期根据本车状态、周边车辆和上周期未消费的轨迹生成新的轨迹
package planner

import (
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

const (
	CycleDuration = 0.02  // 相邻轨迹点的时间间隔（秒）
	PathPoints    = 50    // 每周期输出的轨迹点数
	CruiseSpeed   = 49.5  // 巡航速度上限（英里/小时）
	SpeedStep     = 0.224 // 每周期参考速度调整步长（英里/小时）
	FollowingGap  = 30.0  // 跟车距离阈值（米）
	LaneWidth     = 4.0   // 车道宽度（米）

	anchorSpacing      = 30.0 // 前向锚点间隔（米）
	anchorCount        = 3    // 前向锚点数量
	lookaheadX         = 30.0 // 步长计算使用的局部x前视距离（米）
	speedConversion    = 2.24 // 英里/小时转米/秒
	legacyBlockedSpeed = 29.5 // legacy模式遇前车过近时的参考速度
)

// Input 单个规划周期的输入
type Input struct {
	Vehicle      entity.VehicleState         // 本车状态
	PreviousPath []entity.Point              // 上周期轨迹中未被消费的部分
	EndPathS     float64                     // 保留轨迹终点的s
	EndPathD     float64                     // 保留轨迹终点的d
	Traffic      []entity.TrafficObservation // 周边车辆
}

// Output 单个规划周期的输出
type Output struct {
	Path     []entity.Point // PathPoints个点的轨迹，前len(PreviousPath)个点与输入一致
	Anchors  []entity.Point // 曲线拟合使用的锚点（全局坐标）
	TooClose bool           // 前车过近标志
	RefV     float64        // 本周期参考速度
}

// Planner 轨迹规划器
// 功能：执行一个规划周期：前车检测 → 速度调节 → 锚点构造 → 坐标系变换 → 曲线拟合 → 轨迹离散化
// 说明：规划器本身无状态，跨周期的状态由调用方以ControlState传入
type Planner struct {
	roadway entity.IRoadway
	mode    RegulatorMode
}

// New 创建轨迹规划器
func New(roadway entity.IRoadway, mode RegulatorMode) *Planner {
	return &Planner{
		roadway: roadway,
		mode:    mode,
	}
}

// Plan 执行一个规划周期
// 功能：根据本周期输入与跨周期控制状态生成新的轨迹
// 参数：in-本周期输入，state-会话控制状态（参考速度会被更新）
// 返回：本周期输出
// 算法说明：
// 1. 有保留轨迹时，以保留轨迹终点的s替代本车s，后续推理基于本车的计划位置
// 2. 扫描周边车辆得到前车过近标志，并据此调节参考速度
// 3. 构造锚点并转换到局部坐标系，拟合曲线
// 4. 复制保留轨迹，在曲线上按参考速度采样补齐PathPoints个点
// 说明：锚点退化时沿参考航向直线行驶，规划周期内不存在失败路径
func (p *Planner) Plan(in Input, state *ControlState) Output {
	v := in.Vehicle
	retained := len(in.PreviousPath)
	if retained > 0 {
		v.S = in.EndPathS
	}

	tooClose := scanTraffic(in.Traffic, state.Lane, v.S, retained, p.roadway.MaxS())
	state.RefV = regulate(p.mode, tooClose, state.RefV)

	anchors, frame := buildAnchors(p.roadway, v, in.PreviousPath, state.Lane)
	curve, err := fitCurve(frame.ToLocalAll(anchors))
	if err != nil {
		log.Warnf("%v, anchors=%v, fall back to straight ahead", err, anchors)
		curve = straightAhead{}
	}
	path := discretize(curve, in.PreviousPath, frame, state.RefV)

	log.Debugf("%v retained=%d tooClose=%v refV=%.3f", v, retained, tooClose, state.RefV)
	return Output{
		Path:     path,
		Anchors:  anchors,
		TooClose: tooClose,
		RefV:     state.RefV,
	}
}
