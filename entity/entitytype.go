package entity

import (
	"fmt"
	"math"
)

// Point 笛卡尔坐标点（米）
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}

// Add 向量加法
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Sub 向量减法
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Len 向量长度
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// VehicleState 本车状态
// 功能：描述本车在每个规划周期开始时的位姿与速度
// 说明：Yaw为弧度；Speed与速度调节器使用同一单位（英里/小时）
type VehicleState struct {
	X, Y  float64 // 笛卡尔坐标（米）
	S, D  float64 // 道路坐标：纵向位置与横向偏移（米）
	Yaw   float64 // 航向角（弧度）
	Speed float64 // 标量速度
}

func (v VehicleState) String() string {
	return fmt.Sprintf(
		"VehicleState{xy=(%.2f,%.2f), sd=(%.2f,%.2f), yaw=%.3f, v=%.2f}",
		v.X, v.Y, v.S, v.D, v.Yaw, v.Speed,
	)
}

// TrafficObservation 周边车辆观测
// 功能：一辆周边车辆在当前周期的观测值，不跨周期保存
type TrafficObservation struct {
	ID     int32   // 车辆ID
	X, Y   float64 // 笛卡尔坐标（米）
	VX, VY float64 // 笛卡尔速度分量（米/秒）
	S, D   float64 // 道路坐标（米）
}

// V 速度大小
func (o TrafficObservation) V() float64 {
	return math.Hypot(o.VX, o.VY)
}
