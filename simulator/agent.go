// 执行端模拟：代替驾驶模拟器消费规划轨迹并产生下一周期的规划输入
package simulator

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
	"github.com/tsinghua-fib-lab/highway-planner/planner"
	"github.com/tsinghua-fib-lab/highway-planner/utils/config"
	"github.com/tsinghua-fib-lab/highway-planner/utils/randengine"
)

const (
	mphPerMps       = 2.24 // 米/秒转英里/小时
	minDisplacement = 1e-9 // 小于该位移时沿用上一航向（米）
	speedJitter     = 0.05 // 周边车辆速度的相对扰动幅度
)

// consumeWeights 每个周期消费1、2、3个轨迹点的相对权重
var consumeWeights = []float64{1, 2, 1}

// vehicle 匀速沿车道行驶的周边车辆
type vehicle struct {
	id int32
	s  float64 // 纵向位置（米）
	d  float64 // 横向偏移（米）
	v  float64 // 速度（米/秒）
}

// Agent 执行端模拟器
// 功能：按0.02秒一个点消费规划轨迹，根据消费结果重新推算本车状态，并推进周边车辆
// 说明：每个周期消费的点数从离散分布中随机抽取，模拟执行端与规划端的节拍差异
type Agent struct {
	roadway entity.IRoadway
	engine  *randengine.Engine

	ego     entity.VehicleState
	path    []entity.Point // 未被消费的轨迹
	traffic []*vehicle
}

// New 创建执行端模拟器
// 功能：根据离线仿真配置放置本车与周边车辆
// 参数：roadway-道路坐标服务，c-离线仿真配置
// 返回：执行端模拟器
// 算法说明：
// 1. 本车放置在(EgoS, EgoD)，航向取该处道路方向，速度为0
// 2. 周边车辆速度在配置值基础上加入随机扰动
func New(roadway entity.IRoadway, c config.Simulation) *Agent {
	engine := randengine.New(c.Seed)
	p := roadway.ToCartesian(c.EgoS, c.EgoD)
	a := &Agent{
		roadway: roadway,
		engine:  engine,
		ego: entity.VehicleState{
			X:   p.X,
			Y:   p.Y,
			S:   c.EgoS,
			D:   c.EgoD,
			Yaw: roadHeading(roadway, c.EgoS, c.EgoD),
		},
		traffic: lo.Map(c.Traffic, func(v config.SimulatedVehicle, _ int) *vehicle {
			return &vehicle{
				id: v.ID,
				s:  v.S,
				d:  v.D,
				v:  v.Speed * engine.Uniform(1-speedJitter, 1+speedJitter),
			}
		}),
	}
	log.Infof("ego %v with %d vehicles around", a.ego, len(a.traffic))
	return a
}

// Ego 本车当前状态
func (a *Agent) Ego() entity.VehicleState {
	return a.ego
}

// Input 生成本周期的规划输入
// 功能：组装本车状态、未消费轨迹及其终点的道路坐标、周边车辆观测
func (a *Agent) Input() planner.Input {
	in := planner.Input{
		Vehicle:      a.ego,
		PreviousPath: append([]entity.Point(nil), a.path...),
		Traffic:      lo.Map(a.traffic, func(v *vehicle, _ int) entity.TrafficObservation { return a.observe(v) }),
	}
	if n := len(a.path); n > 0 {
		yaw := a.ego.Yaw
		if n > 1 {
			yaw = headingOr(a.path[n-2], a.path[n-1], yaw)
		}
		in.EndPathS, in.EndPathD = a.roadway.ToFrenet(a.path[n-1].X, a.path[n-1].Y, yaw)
	}
	return in
}

// Step 执行一个周期
// 功能：接收新的规划轨迹，消费其中1到3个点，并推进周边车辆
// 参数：path-规划端本周期输出的轨迹
// 返回：本周期消费的点数
// 算法说明：
// 1. 从离散分布抽取消费点数，不超过轨迹长度
// 2. 本车位置取最后一个被消费的点，航向取最后两点连线方向，速度取最后一段位移除以0.02秒
// 3. 通过道路坐标服务重新计算本车的s与d
// 4. 剩余未消费的点作为下一周期的保留轨迹
// 5. 周边车辆沿s匀速前进相同的时间
func (a *Agent) Step(path []entity.Point) int {
	n := min(int(a.engine.DiscreteDistribution(consumeWeights))+1, len(path))
	if n > 0 {
		last := entity.Point{X: a.ego.X, Y: a.ego.Y}
		if n > 1 {
			last = path[n-2]
		}
		cur := path[n-1]
		a.ego.Yaw = headingOr(last, cur, a.ego.Yaw)
		a.ego.Speed = cur.Sub(last).Len() / planner.CycleDuration * mphPerMps
		a.ego.X, a.ego.Y = cur.X, cur.Y
		a.ego.S, a.ego.D = a.roadway.ToFrenet(cur.X, cur.Y, a.ego.Yaw)
	} else {
		a.ego.Speed = 0
	}
	a.path = append([]entity.Point(nil), path[n:]...)

	dt := float64(max(n, 1)) * planner.CycleDuration
	for _, v := range a.traffic {
		v.s += v.v * dt
		if maxS := a.roadway.MaxS(); maxS > 0 {
			v.s = math.Mod(v.s, maxS)
		}
	}
	log.Tracef("consumed %d points, ego %v", n, a.ego)
	return n
}

// observe 生成周边车辆的观测值，速度方向取所在位置的道路方向
func (a *Agent) observe(v *vehicle) entity.TrafficObservation {
	p := a.roadway.ToCartesian(v.s, v.d)
	sin, cos := math.Sincos(roadHeading(a.roadway, v.s, v.d))
	return entity.TrafficObservation{
		ID: v.id,
		X:  p.X,
		Y:  p.Y,
		VX: v.v * cos,
		VY: v.v * sin,
		S:  v.s,
		D:  v.d,
	}
}

func roadHeading(roadway entity.IRoadway, s, d float64) float64 {
	p0 := roadway.ToCartesian(s, d)
	p1 := roadway.ToCartesian(s+1, d)
	return math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
}

func headingOr(from, to entity.Point, fallback float64) float64 {
	delta := to.Sub(from)
	if delta.Len() < minDisplacement {
		return fallback
	}
	return math.Atan2(delta.Y, delta.X)
}
