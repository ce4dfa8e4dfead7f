package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：文件优先于MongoDB；MongoDB数据支持本地缓存
type InputPath struct {
	DB        string `yaml:"db,omitempty"`         // 数据库名
	Col       string `yaml:"col,omitempty"`        // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.csv
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件名
// 算法说明：
// 1. 如果指定了缓存路径，直接返回
// 2. 否则使用默认命名规则：{数据库名}.{集合名}.csv
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".csv"
}

// Input 指定所有输入数据的配置项
type Input struct {
	URI  string    `yaml:"uri,omitempty"`   // MongoDB连接字符串
	Map  InputPath `yaml:"map"`             // 参考路点表
	MaxS float64   `yaml:"max_s,omitempty"` // 闭环道路总长，0表示非闭环
}

// Control 规划控制配置
// 功能：会话开始时的控制状态与速度调节方式
type Control struct {
	Lane         int     `yaml:"lane"`                // 初始目标车道
	InitialSpeed float64 `yaml:"initial_speed"`       // 初始参考速度（英里/小时），默认0从静止起步；设为49.5时首周期即按巡航速度规划
	Regulator    string  `yaml:"regulator,omitempty"` // 速度调节方式：rate_limited（默认）或legacy
}

// Server 服务配置
type Server struct {
	Listen            string `yaml:"listen,omitempty"`             // websocket监听地址
	HeartbeatInterval int32  `yaml:"heartbeat_interval,omitempty"` // 心跳日志间隔周期数
}

// SimulatedVehicle 离线仿真中的周边车辆
type SimulatedVehicle struct {
	ID    int32   `yaml:"id"`
	S     float64 `yaml:"s"`     // 初始纵向位置（米）
	D     float64 `yaml:"d"`     // 横向偏移（米）
	Speed float64 `yaml:"speed"` // 行驶速度（米/秒）
}

// Simulation 离线仿真配置
// 说明：Steps大于0时不启动websocket服务，改为在进程内运行仿真
type Simulation struct {
	Steps   int32              `yaml:"steps,omitempty"`   // 仿真周期数
	Seed    uint64             `yaml:"seed,omitempty"`    // 随机数种子
	EgoS    float64            `yaml:"ego_s,omitempty"`   // 本车初始纵向位置（米）
	EgoD    float64            `yaml:"ego_d,omitempty"`   // 本车初始横向偏移（米）
	Traffic []SimulatedVehicle `yaml:"traffic,omitempty"` // 周边车辆
}

// Config YAML配置文件的根结构
// 功能：定义整个规划服务的配置结构
type Config struct {
	Input      Input      `yaml:"input"`                // 输入
	Control    Control    `yaml:"control"`              // 规划控制
	Server     Server     `yaml:"server"`               // 服务
	Simulation Simulation `yaml:"simulation,omitempty"` // 离线仿真
}
