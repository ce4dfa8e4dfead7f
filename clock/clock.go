package clock

import (
	"fmt"
)

// Clock 会话周期时钟
// 功能：记录一个会话内已完成的规划周期数与执行端已行驶的时间
// 说明：时间按执行端消费的轨迹点数累计，每个点DT秒
type Clock struct {
	DT float64 // 每个轨迹点的时间间隔（秒）

	T            float64 // 当前时间（秒）
	InternalStep int32   // 已完成的周期数
}

// New 创建新的时钟实例
// 参数：dt-轨迹点时间间隔（秒）
func New(dt float64) *Clock {
	c := &Clock{DT: dt}
	c.Init()
	return c
}

// Init 重置时钟状态
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
}

// Tick 推进一个周期
// 参数：points-执行端在该周期内消费的轨迹点数，每个点对应DT秒
func (c *Clock) Tick(points int) {
	c.InternalStep++
	c.T += float64(points) * c.DT
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS.mmm）
// 算法说明：
// 1. 将总秒数转换为小时、分钟、秒
// 2. 秒保留毫秒，周期仅为20ms
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
// 算法说明：
// 1. 计算小时数：总秒数除以3600
// 2. 计算分钟数：剩余秒数除以60
// 3. 计算秒数：最终剩余秒数（浮点数）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
