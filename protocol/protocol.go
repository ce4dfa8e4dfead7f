// 与驾驶模拟器之间的消息编解码：42["event", data] 形式的文本帧
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
	"github.com/tsinghua-fib-lab/highway-planner/planner"
)

const (
	framePrefix = "42"

	EventTelemetry = "telemetry"
	EventControl   = "control"
	EventManual    = "manual"

	sensorFusionFields = 7 // [id, x, y, vx, vy, s, d]
)

// ErrMalformed 无法识别的帧，调用方应丢弃且不回复
var ErrMalformed = errors.New("malformed frame")

// Manual 手动模式应答帧
var Manual = []byte(`42["manual",{}]`)

// Telemetry 模拟器每周期上报的遥测数据
type Telemetry struct {
	X             float64     `json:"x"`
	Y             float64     `json:"y"`
	S             float64     `json:"s"`
	D             float64     `json:"d"`
	Yaw           float64     `json:"yaw"`   // 角度制
	Speed         float64     `json:"speed"` // 英里/小时
	PreviousPathX []float64   `json:"previous_path_x"`
	PreviousPathY []float64   `json:"previous_path_y"`
	EndPathS      float64     `json:"end_path_s"`
	EndPathD      float64     `json:"end_path_d"`
	SensorFusion  [][]float64 `json:"sensor_fusion"`
}

// Message 解码后的一帧
// 说明：Telemetry为nil表示该帧需要以Manual应答
type Message struct {
	Event     string
	Telemetry *Telemetry
}

// Decode 解码一帧
// 功能：识别42前缀，解析第一个'['到最后一个']'之间的JSON数组[event, data]
// 参数：frame-收到的文本帧
// 返回：解码后的消息；不可识别时返回包装了ErrMalformed的错误
// 算法说明：
// 1. 缺少42前缀或方括号、JSON非法、event不是字符串：ErrMalformed
// 2. event不是telemetry，或data缺失/为null：返回Telemetry为nil的消息
// 3. 否则将data解析为Telemetry
func Decode(frame []byte) (Message, error) {
	if !bytes.HasPrefix(frame, []byte(framePrefix)) {
		return Message{}, fmt.Errorf("%w: missing %s prefix", ErrMalformed, framePrefix)
	}
	begin := bytes.IndexByte(frame, '[')
	end := bytes.LastIndexByte(frame, ']')
	if begin < 0 || end < begin {
		return Message{}, fmt.Errorf("%w: no payload array", ErrMalformed)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(frame[begin:end+1], &parts); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parts) == 0 {
		return Message{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	var msg Message
	if err := json.Unmarshal(parts[0], &msg.Event); err != nil {
		return Message{}, fmt.Errorf("%w: event: %v", ErrMalformed, err)
	}
	if msg.Event != EventTelemetry || len(parts) < 2 || bytes.Equal(bytes.TrimSpace(parts[1]), []byte("null")) {
		return msg, nil
	}
	var t Telemetry
	if err := json.Unmarshal(parts[1], &t); err != nil {
		return Message{}, fmt.Errorf("%w: telemetry: %v", ErrMalformed, err)
	}
	msg.Telemetry = &t
	return msg, nil
}

// ToInput 将遥测数据转换为规划输入
// 功能：组装本车状态、保留轨迹与周边车辆观测，航向由角度转为弧度
// 返回：规划输入；保留轨迹x/y长度不一致或周边车辆字段不足时返回ErrMalformed
func (t *Telemetry) ToInput() (planner.Input, error) {
	if len(t.PreviousPathX) != len(t.PreviousPathY) {
		return planner.Input{}, fmt.Errorf(
			"%w: previous_path_x has %d points but previous_path_y has %d",
			ErrMalformed, len(t.PreviousPathX), len(t.PreviousPathY),
		)
	}
	for i, row := range t.SensorFusion {
		if len(row) < sensorFusionFields {
			return planner.Input{}, fmt.Errorf("%w: sensor_fusion[%d] has %d fields", ErrMalformed, i, len(row))
		}
	}
	return planner.Input{
		Vehicle: entity.VehicleState{
			X:     t.X,
			Y:     t.Y,
			S:     t.S,
			D:     t.D,
			Yaw:   t.Yaw * math.Pi / 180,
			Speed: t.Speed,
		},
		PreviousPath: lo.Map(lo.Zip2(t.PreviousPathX, t.PreviousPathY), func(p lo.Tuple2[float64, float64], _ int) entity.Point {
			return entity.Point{X: p.A, Y: p.B}
		}),
		EndPathS: t.EndPathS,
		EndPathD: t.EndPathD,
		Traffic: lo.Map(t.SensorFusion, func(row []float64, _ int) entity.TrafficObservation {
			return entity.TrafficObservation{
				ID: int32(row[0]),
				X:  row[1],
				Y:  row[2],
				VX: row[3],
				VY: row[4],
				S:  row[5],
				D:  row[6],
			}
		}),
	}, nil
}

// NewTelemetry 由规划输入构造遥测数据，航向由弧度转为角度
// 说明：供离线仿真经由与在线会话相同的编解码路径驱动规划
func NewTelemetry(in planner.Input) Telemetry {
	return Telemetry{
		X:             in.Vehicle.X,
		Y:             in.Vehicle.Y,
		S:             in.Vehicle.S,
		D:             in.Vehicle.D,
		Yaw:           in.Vehicle.Yaw * 180 / math.Pi,
		Speed:         in.Vehicle.Speed,
		PreviousPathX: lo.Map(in.PreviousPath, func(p entity.Point, _ int) float64 { return p.X }),
		PreviousPathY: lo.Map(in.PreviousPath, func(p entity.Point, _ int) float64 { return p.Y }),
		EndPathS:      in.EndPathS,
		EndPathD:      in.EndPathD,
		SensorFusion: lo.Map(in.Traffic, func(o entity.TrafficObservation, _ int) []float64 {
			return []float64{float64(o.ID), o.X, o.Y, o.VX, o.VY, o.S, o.D}
		}),
	}
}

type control struct {
	NextX []float64 `json:"next_x"`
	NextY []float64 `json:"next_y"`
}

// EncodeControl 编码控制帧 42["control",{"next_x":[...],"next_y":[...]}]
func EncodeControl(path []entity.Point) ([]byte, error) {
	payload, err := json.Marshal([]any{EventControl, control{
		NextX: lo.Map(path, func(p entity.Point, _ int) float64 { return p.X }),
		NextY: lo.Map(path, func(p entity.Point, _ int) float64 { return p.Y }),
	}})
	if err != nil {
		return nil, fmt.Errorf("encode control: %w", err)
	}
	log.Tracef("control frame of %d points", len(path))
	return append([]byte(framePrefix), payload...), nil
}

// EncodeTelemetry 编码遥测帧，供离线仿真与测试扮演模拟器一端
func EncodeTelemetry(t Telemetry) ([]byte, error) {
	payload, err := json.Marshal([]any{EventTelemetry, t})
	if err != nil {
		return nil, fmt.Errorf("encode telemetry: %w", err)
	}
	return append([]byte(framePrefix), payload...), nil
}

// DecodeControl 解码控制帧，返回轨迹点
func DecodeControl(frame []byte) ([]entity.Point, error) {
	if !bytes.HasPrefix(frame, []byte(framePrefix)) {
		return nil, fmt.Errorf("%w: missing %s prefix", ErrMalformed, framePrefix)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(frame[len(framePrefix):], &parts); err != nil || len(parts) != 2 {
		return nil, fmt.Errorf("%w: control payload", ErrMalformed)
	}
	var event string
	var c control
	if err := json.Unmarshal(parts[0], &event); err != nil || event != EventControl {
		return nil, fmt.Errorf("%w: not a control frame", ErrMalformed)
	}
	if err := json.Unmarshal(parts[1], &c); err != nil || len(c.NextX) != len(c.NextY) {
		return nil, fmt.Errorf("%w: control data", ErrMalformed)
	}
	return lo.Map(lo.Zip2(c.NextX, c.NextY), func(p lo.Tuple2[float64, float64], _ int) entity.Point {
		return entity.Point{X: p.A, Y: p.B}
	}), nil
}
