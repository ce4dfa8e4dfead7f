package planner

import (
	"fmt"

	"github.com/samber/lo"
)

// RegulatorMode 速度调节方式
type RegulatorMode string

const (
	// RegulatorRateLimited 遇前车过近时每周期减速一个步长，否则加速到巡航速度
	RegulatorRateLimited RegulatorMode = "rate_limited"
	// RegulatorLegacy 遇前车过近时直接降到legacyBlockedSpeed，随后仍按步长加速，从不按步长减速
	RegulatorLegacy RegulatorMode = "legacy"
)

// ParseRegulatorMode 解析速度调节方式，空字符串取默认值
func ParseRegulatorMode(s string) (RegulatorMode, error) {
	switch m := RegulatorMode(s); m {
	case "":
		return RegulatorRateLimited, nil
	case RegulatorRateLimited, RegulatorLegacy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown regulator mode %q", s)
	}
}

// ControlState 跨周期保存的控制状态
// 功能：记录一个会话内的目标车道与参考速度
// 说明：由会话持有，只在Plan中被速度调节器修改；同一会话的周期必须串行执行
type ControlState struct {
	Lane int     // 目标车道
	RefV float64 // 参考速度（英里/小时）
}

// NewControlState 创建控制状态
func NewControlState(lane int, refV float64) *ControlState {
	return &ControlState{
		Lane: lane,
		RefV: lo.Clamp(refV, 0, CruiseSpeed),
	}
}

// regulate 速度调节
// 功能：根据前车过近标志按固定步长调整参考速度
// 参数：mode-调节方式，tooClose-前车过近标志，refV-当前参考速度
// 返回：新的参考速度，限制在[0, CruiseSpeed]内
// 说明：只限制每周期的参考速度变化量，不是加速度/加加速度约束的运动学控制器
func regulate(mode RegulatorMode, tooClose bool, refV float64) float64 {
	switch mode {
	case RegulatorLegacy:
		if tooClose {
			refV = legacyBlockedSpeed
		}
		if refV < CruiseSpeed {
			refV += SpeedStep
		}
	default:
		if tooClose {
			refV -= SpeedStep
		} else if refV < CruiseSpeed {
			refV += SpeedStep
		}
	}
	return lo.Clamp(refV, 0, CruiseSpeed)
}
