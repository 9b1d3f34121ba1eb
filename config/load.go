package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// JSON 序列化配置（带缩进）
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ============================================================================
//                              环境变量覆盖
// ============================================================================

// 环境变量（均使用 RTLINK_ 前缀）
const (
	EnvPrefix = "RTLINK_"

	EnvServerURL        = "SERVER_URL"
	EnvWebTransportAddr = "WT_ADDR"
	EnvHTTPAddr         = "HTTP_ADDR"
	EnvCertFile         = "CERT_FILE"
	EnvKeyFile          = "KEY_FILE"
	EnvPreferWebSocket  = "PREFER_WEBSOCKET"
	EnvNegotiateTimeout = "NEGOTIATE_TIMEOUT"
)

// ApplyEnv 应用环境变量覆盖配置
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
// 无法解析的值返回错误，不做静默忽略。
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvServerURL); ok {
		cfg.Client.ServerURL = v
	}
	if v, ok := get(EnvWebTransportAddr); ok {
		cfg.Server.WebTransport.ListenAddr = v
	}
	if v, ok := get(EnvHTTPAddr); ok {
		cfg.Server.HTTP.ListenAddr = v
	}
	if v, ok := get(EnvCertFile); ok {
		cfg.Server.TLS.CertFile = v
	}
	if v, ok := get(EnvKeyFile); ok {
		cfg.Server.TLS.KeyFile = v
	}
	if v, ok := get(EnvPreferWebSocket); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvPreferWebSocket, err)
		}
		cfg.Client.PreferWebSocket = b
	}
	if v, ok := get(EnvNegotiateTimeout); ok {
		if err := cfg.Client.NegotiateTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvNegotiateTimeout, err)
		}
	}
	return nil
}
