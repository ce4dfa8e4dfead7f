package task

import (
	"github.com/tsinghua-fib-lab/highway-planner/entity"
	"github.com/tsinghua-fib-lab/highway-planner/protocol"
	"github.com/tsinghua-fib-lab/highway-planner/simulator"
)

// RunOffline 离线运行
// 功能：不启动websocket服务，由执行端模拟器在进程内扮演驾驶模拟器
// 参数：steps-运行的规划周期数
// 返回：结束时的本车状态
// 算法说明：
// 1. 根据离线仿真配置创建执行端模拟器与一个会话
// 2. 每个周期：模拟器生成遥测帧 → 会话处理 → 解码控制帧 → 模拟器消费轨迹
// 3. 收到关闭指令或周期数用完时结束
// 说明：遥测与控制都经过与在线会话相同的编解码路径
func (ctx *Context) RunOffline(steps int32) entity.VehicleState {
	agent := simulator.New(ctx.roadway, ctx.runtimeConfig.All.Simulation)
	s := ctx.newSession()
	for i := int32(0); i < steps && !ctx.closed.Load(); i++ {
		frame, err := protocol.EncodeTelemetry(protocol.NewTelemetry(agent.Input()))
		if err != nil {
			log.Panicf("encode telemetry: %v", err)
		}
		path, err := protocol.DecodeControl(s.handle(frame))
		if err != nil {
			log.Panicf("step %d: %v", i, err)
		}
		agent.Step(path)
	}
	ego := agent.Ego()
	log.Infof("offline run complete after %d cycles (%s): %v", s.clock.InternalStep, s.clock, ego)
	return ego
}
