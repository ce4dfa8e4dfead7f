// 道路坐标服务：基于预加载的参考路点表，在道路坐标(s, d)与笛卡尔坐标之间转换
package roadway

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

var (
	ErrTooFewWaypoints = errors.New("roadway: at least 2 waypoints are required")
)

// Waypoint 参考路点
// 功能：道路中心参考线上的一个采样点
// 说明：DX/DY为指向道路横向（d增大方向）的单位向量
type Waypoint struct {
	S  float64 `bson:"s"`  // 纵向位置（米）
	X  float64 `bson:"x"`  // 笛卡尔坐标X（米）
	Y  float64 `bson:"y"`  // 笛卡尔坐标Y（米）
	DX float64 `bson:"dx"` // 横向单位向量X分量
	DY float64 `bson:"dy"` // 横向单位向量Y分量
}

// Roadway 道路坐标服务
// 功能：持有不可变的参考路点表，提供(s, d)与(x, y)之间的双向转换
// 说明：maxS > 0 时道路为闭环，s在[0, maxS)内循环
type Roadway struct {
	waypoints []Waypoint
	ss        []float64 // 路点S列表，用于二分查找
	maxS      float64
}

// New 创建道路坐标服务
// 功能：校验路点表并建立查找索引
// 参数：waypoints-按S严格递增排列的路点，maxS-闭环道路总长（0表示非闭环）
// 返回：道路坐标服务，或校验失败的错误
func New(waypoints []Waypoint, maxS float64) (*Roadway, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}
	ss := make([]float64, len(waypoints))
	for i, w := range waypoints {
		if i > 0 && w.S <= waypoints[i-1].S {
			return nil, fmt.Errorf("roadway: waypoint %d has s=%v not greater than previous s=%v", i, w.S, waypoints[i-1].S)
		}
		ss[i] = w.S
	}
	if maxS < 0 || (maxS > 0 && maxS <= ss[len(ss)-1]) {
		return nil, fmt.Errorf("roadway: max_s %v must be 0 or greater than the last waypoint s %v", maxS, ss[len(ss)-1])
	}
	log.Infof("roadway with %d waypoints, s in [%.3f, %.3f], max_s=%v", len(waypoints), ss[0], ss[len(ss)-1], maxS)
	return &Roadway{
		waypoints: append([]Waypoint(nil), waypoints...),
		ss:        ss,
		maxS:      maxS,
	}, nil
}

// MaxS 闭环道路总长，0表示非闭环
func (r *Roadway) MaxS() float64 {
	return r.maxS
}

// Len 路点数量
func (r *Roadway) Len() int {
	return len(r.waypoints)
}

func (r *Roadway) loop() bool {
	return r.maxS > 0
}

func (r *Roadway) wrapS(s float64) float64 {
	if !r.loop() {
		return s
	}
	s = math.Mod(s, r.maxS)
	if s < 0 {
		s += r.maxS
	}
	return s
}

// segment 返回s所在路段的起止路点下标
func (r *Roadway) segment(s float64) (prev, next int) {
	n := len(r.waypoints)
	// 最后一个满足S < s的路点
	prev = sort.SearchFloat64s(r.ss, s) - 1
	if r.loop() {
		if prev < 0 {
			prev = n - 1
		}
		return prev, (prev + 1) % n
	}
	prev = lo.Clamp(prev, 0, n-2)
	return prev, prev + 1
}

// ToCartesian 道路坐标转笛卡尔坐标
// 功能：计算道路坐标(s, d)对应的笛卡尔坐标
// 参数：s-纵向位置，d-横向偏移（沿行驶方向右侧为正）
// 返回：笛卡尔坐标点
// 算法说明：
// 1. 闭环道路将s折返到[0, maxS)
// 2. 找到s所在路段，取路段方向为参考航向
// 3. 沿航向前进s-S，再沿航向顺时针旋转90度的方向偏移d
// 说明：非闭环道路在首尾路段之外沿首尾路段方向延长
func (r *Roadway) ToCartesian(s, d float64) entity.Point {
	s = r.wrapS(s)
	prev, next := r.segment(s)
	p1, p2 := r.waypoints[prev], r.waypoints[next]
	heading := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
	segS := s - p1.S
	if r.loop() && segS < 0 {
		segS += r.maxS
	}
	perp := heading - math.Pi/2
	return entity.Point{
		X: p1.X + segS*math.Cos(heading) + d*math.Cos(perp),
		Y: p1.Y + segS*math.Sin(heading) + d*math.Sin(perp),
	}
}

func (r *Roadway) closestWaypoint(x, y float64) int {
	closest, best := 0, math.Inf(1)
	for i, w := range r.waypoints {
		if dist := math.Hypot(w.X-x, w.Y-y); dist < best {
			closest, best = i, dist
		}
	}
	return closest
}

// nextWaypoint 按航向判断下一个路点
// 说明：最近路点位于车辆后方（与航向夹角大于90度）时取其后一个路点
func (r *Roadway) nextWaypoint(x, y, yaw float64) int {
	i := r.closestWaypoint(x, y)
	w := r.waypoints[i]
	heading := math.Atan2(w.Y-y, w.X-x)
	if angle := math.Abs(math.Remainder(yaw-heading, 2*math.Pi)); angle > math.Pi/2 {
		i++
		if i == len(r.waypoints) {
			if r.loop() {
				i = 0
			} else {
				i = len(r.waypoints) - 1
			}
		}
	}
	return i
}

// ToFrenet 笛卡尔坐标转道路坐标
// 功能：将笛卡尔坐标(x, y)投影到参考线，得到道路坐标(s, d)
// 参数：x,y-笛卡尔坐标，yaw-航向（弧度），用于区分前后路点
// 返回：s-纵向位置，d-横向偏移（沿行驶方向右侧为正）
// 算法说明：
// 1. 根据航向找到前方路点及其前一个路点构成的路段
// 2. 点在路段方向上的投影长度加上路段起点S得到s
// 3. 点到路段的有向垂直距离（叉积符号）得到d
func (r *Roadway) ToFrenet(x, y, yaw float64) (s, d float64) {
	n := len(r.waypoints)
	next := r.nextWaypoint(x, y, yaw)
	prev := next - 1
	if next == 0 {
		if r.loop() {
			prev = n - 1
		} else {
			prev, next = 0, 1
		}
	}
	p1, p2 := r.waypoints[prev], r.waypoints[next]
	segX, segY := p2.X-p1.X, p2.Y-p1.Y
	segLen := math.Hypot(segX, segY)
	if segLen == 0 {
		log.Warnf("zero length segment between waypoints %d and %d", prev, next)
		return p1.S, math.Hypot(x-p1.X, y-p1.Y)
	}
	vx, vy := x-p1.X, y-p1.Y
	s = r.wrapS(p1.S + (vx*segX+vy*segY)/segLen)
	d = (segY*vx - segX*vy) / segLen
	return
}
