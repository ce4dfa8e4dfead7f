package config

import (
	"fmt"

	"github.com/tsinghua-fib-lab/highway-planner/planner"
)

const (
	defaultMapFile           = "data/highway_map.csv"
	defaultMaxS              = 6945.554
	defaultLane              = 1
	defaultListen            = ":4567"
	defaultHeartbeatInterval = 500
)

// Default 默认配置，YAML中未出现的字段保持默认值
func Default() Config {
	return Config{
		Input: Input{
			MaxS: defaultMaxS,
		},
		Control: Control{
			Lane:      defaultLane,
			Regulator: string(planner.RegulatorRateLimited),
		},
		Server: Server{
			Listen:            defaultListen,
			HeartbeatInterval: defaultHeartbeatInterval,
		},
	}
}

// RuntimeConfig 运行时配置
// 功能：存储经过校验的配置，以及由配置解析得到的运行时对象
type RuntimeConfig struct {
	All  Config                // 全部配置
	C    Control               // 规划控制配置
	Mode planner.RegulatorMode // 速度调节方式
}

// NewRuntimeConfig 校验配置并创建运行时配置
// 功能：检查各配置项的取值范围，解析速度调节方式
// 参数：config-原始配置对象
// 说明：未指定路点表来源时使用默认路点文件
// 返回：运行时配置指针，或第一个不合法配置项对应的错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	mode, err := planner.ParseRegulatorMode(config.Control.Regulator)
	if err != nil {
		return nil, fmt.Errorf("control.regulator: %w", err)
	}
	if config.Control.Lane < 0 {
		return nil, fmt.Errorf("control.lane must be non-negative, got %d", config.Control.Lane)
	}
	if v := config.Control.InitialSpeed; v < 0 || v > planner.CruiseSpeed {
		return nil, fmt.Errorf("control.initial_speed must be in [0, %v], got %v", planner.CruiseSpeed, v)
	}
	if config.Server.HeartbeatInterval <= 0 {
		return nil, fmt.Errorf("server.heartbeat_interval must be positive, got %d", config.Server.HeartbeatInterval)
	}
	if config.Input.MaxS < 0 {
		return nil, fmt.Errorf("input.max_s must be non-negative, got %v", config.Input.MaxS)
	}
	if m := &config.Input.Map; m.File == "" {
		switch {
		case m.DB == "" && m.Col == "":
			m.File = defaultMapFile
		case m.DB == "" || m.Col == "":
			return nil, fmt.Errorf("input.map needs either file or db+col")
		}
	}
	return &RuntimeConfig{
		All:  config,
		C:    config.Control,
		Mode: mode,
	}, nil
}
