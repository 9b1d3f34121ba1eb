// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义（client.go / server.go / log.go）
//   - 支持从 JSON 加载、环境变量覆盖
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Server.WebTransport.ListenAddr = ":4433"
//
//	// 从文件加载并应用环境变量
//	cfg, err := config.LoadFile("rtlink.json")
//	config.ApplyEnv(cfg)
package config

// Config 是 rtlink 的完整配置结构
//
// 配置按照功能模块组织：
//   - Client: 客户端协商（WebTransport 优先，WebSocket 回退）
//   - Server: WebTransport 监听器与 HTTP 监听器（/ws 回显）
//   - Log: 日志级别与格式
type Config struct {
	// Client 客户端配置
	Client ClientConfig `json:"client"`

	// Server 服务端配置
	Server ServerConfig `json:"server"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Client: DefaultClientConfig(),
		Server: DefaultServerConfig(),
		Log:    DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
