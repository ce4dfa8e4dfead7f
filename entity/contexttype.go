package entity

// roadway/roadway.go的依赖倒置
type IRoadway interface {
	// 道路坐标(s, d)转笛卡尔坐标
	ToCartesian(s, d float64) Point
	// 笛卡尔坐标与航向（弧度）转道路坐标(s, d)
	ToFrenet(x, y, yaw float64) (s, d float64)
	// 闭环道路的总长度，0表示非闭环
	MaxS() float64
}
