package task

import (
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/highway-planner/clock"
	"github.com/tsinghua-fib-lab/highway-planner/planner"
	"github.com/tsinghua-fib-lab/highway-planner/protocol"
)

// session 与一个驾驶模拟器连接对应的规划会话
// 功能：持有该连接的控制状态与周期时钟，逐帧串行执行规划周期
// 说明：只被会话自己的协程访问，不需要加锁
type session struct {
	id      int64
	planner *planner.Planner
	state   *planner.ControlState
	clock   *clock.Clock
	log     *logrus.Entry

	heartbeatInterval int32
	lastPathLen       int // 上周期下发的轨迹点数，用于推算执行端消费的点数
}

func (ctx *Context) newSession() *session {
	c := ctx.runtimeConfig
	s := &session{
		id:                ctx.nextID.Add(1),
		planner:           ctx.planner,
		state:             planner.NewControlState(c.C.Lane, c.C.InitialSpeed),
		clock:             clock.New(planner.CycleDuration),
		heartbeatInterval: c.All.Server.HeartbeatInterval,
	}
	s.log = log.WithField("session", s.id)
	return s
}

// serve 会话主循环
// 功能：逐条读取文本帧并写回应答，直到连接断开
func (s *session) serve(conn *websocket.Conn) {
	s.log.Infof("connected from %s", conn.RemoteAddr())
	defer func() {
		s.log.Infof("disconnected after %d cycles (%s)", s.clock.InternalStep, s.clock)
	}()
	for {
		mt, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warnf("read: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		reply := s.handle(frame)
		if reply == nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			s.log.Warnf("write: %v", err)
			return
		}
	}
}

// handle 处理一帧
// 功能：遥测帧执行一个规划周期并返回控制帧，其余可识别的帧返回手动模式应答
// 参数：frame-收到的文本帧
// 返回：应答帧；为nil表示丢弃该帧且不应答
// 算法说明：
// 1. 解码失败：丢弃，控制状态不变
// 2. 非遥测帧或无数据：返回protocol.Manual
// 3. 遥测帧：转换为规划输入，执行Plan，编码控制帧
// 4. 根据上周期轨迹与本周期保留轨迹的长度差推进时钟，定期输出心跳日志
func (s *session) handle(frame []byte) []byte {
	msg, err := protocol.Decode(frame)
	if err != nil {
		s.log.Warnf("drop frame: %v", err)
		return nil
	}
	if msg.Telemetry == nil {
		s.log.Debugf("manual for event %q", msg.Event)
		return protocol.Manual
	}
	in, err := msg.Telemetry.ToInput()
	if err != nil {
		s.log.Warnf("drop telemetry: %v", err)
		return nil
	}
	out := s.planner.Plan(in, s.state)
	reply, err := protocol.EncodeControl(out.Path)
	if err != nil {
		s.log.Errorf("drop control: %v", err)
		return nil
	}

	consumed := 0
	if s.lastPathLen > 0 {
		consumed = max(s.lastPathLen-len(in.PreviousPath), 0)
	}
	s.lastPathLen = len(out.Path)
	s.clock.Tick(consumed)
	if s.heartbeatInterval > 0 && s.clock.InternalStep%s.heartbeatInterval == 0 {
		s.log.Infof(
			"STEP: %d(%s) lane=%d refV=%.2f tooClose=%v",
			s.clock.InternalStep, s.clock, s.state.Lane, s.state.RefV, out.TooClose,
		)
	}
	return reply
}
