package config

import (
	"fmt"
	"strings"

	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 级别描述，格式: 组件=级别,...,默认级别
	Level string `json:"level"`

	// Format 输出格式: text 或 json
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}

// Options 转换为 log.Setup 选项
func (c LogConfig) Options() log.Options {
	return log.Options{Level: c.Level, Format: c.Format}
}
