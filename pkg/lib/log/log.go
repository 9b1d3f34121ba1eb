// Package log 提供 rtlink 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。每个包持有一个带组件名的 LazyLogger：
//
//	var logger = log.Logger("server/mux")
//	logger.Info("会话已接受", "session", id, "path", path)
//
// 日志级别支持按组件配置，来源为环境变量或 Setup：
//   - RTLINK_LOG_LEVEL: 组件=级别,组件=级别,默认级别
//     示例: server/mux=debug,transport/websocket=warn,info
//   - RTLINK_LOG_FORMAT: text 或 json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLevel  = "RTLINK_LOG_LEVEL"
	EnvFormat = "RTLINK_LOG_FORMAT"
)

// Options 日志初始化选项
type Options struct {
	// Level 级别描述，格式同 RTLINK_LOG_LEVEL
	Level string

	// Format 输出格式：text 或 json
	Format string

	// Output 输出目标，nil 时为 stderr
	Output io.Writer
}

// levelTable 默认级别与组件级别
type levelTable struct {
	def        slog.Level
	components map[string]slog.Level
}

func (t *levelTable) levelFor(component string) slog.Level {
	if lvl, ok := t.components[component]; ok {
		return lvl
	}
	return t.def
}

var (
	levelsMu sync.RWMutex
	levels   = &levelTable{def: slog.LevelInfo, components: map[string]slog.Level{}}
)

// Setup 按选项重建默认 logger
//
// Level/Format 为空时回退到环境变量，再回退到 info/text。
func Setup(opts Options) {
	levelSpec := opts.Level
	if levelSpec == "" {
		levelSpec = os.Getenv(EnvLevel)
	}
	format := opts.Format
	if format == "" {
		format = os.Getenv(EnvFormat)
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	table := ParseLevels(levelSpec)

	// handler 本身放行全部级别，按组件过滤在 LazyLogger 中完成
	hopts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(out, hopts)
	} else {
		handler = slog.NewTextHandler(out, hopts)
	}

	levelsMu.Lock()
	levels = table
	levelsMu.Unlock()
	slog.SetDefault(slog.New(handler))
}

// ParseLevels 解析级别描述字符串
//
// 无法识别的片段被忽略。
func ParseLevels(desc string) *levelTable {
	table := &levelTable{def: slog.LevelInfo, components: map[string]slog.Level{}}
	for _, part := range strings.Split(desc, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if component, name, ok := strings.Cut(part, "="); ok {
			if lvl, ok := parseLevel(name); ok {
				table.components[strings.TrimSpace(component)] = lvl
			}
			continue
		}
		if lvl, ok := parseLevel(part); ok {
			table.def = lvl
		}
	}
	return table
}

// parseLevel 解析日志级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// SetLevel 动态设置组件的日志级别
func SetLevel(component string, level slog.Level) {
	levelsMu.Lock()
	defer levelsMu.Unlock()
	next := &levelTable{def: levels.def, components: make(map[string]slog.Level, len(levels.components)+1)}
	for k, v := range levels.components {
		next.components[k] = v
	}
	next.components[component] = level
	levels = next
}

func enabled(component string, level slog.Level) bool {
	levelsMu.RLock()
	defer levelsMu.RUnlock()
	return level >= levels.levelFor(component)
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时通过 Setup 切换输出目标。
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !enabled(l.component, level) {
		return
	}
	slog.Default().With("component", l.component).Log(ctx, level, msg, args...)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext 带 context 的 Info 日志
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext 带 context 的 Error 日志
func (l *LazyLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// With 返回附加属性后的 LazyLogger 视图
//
// 返回的 Bound 仍遵循组件级别过滤。
func (l *LazyLogger) With(args ...any) *Bound {
	return &Bound{parent: l, attrs: args}
}

// Bound 附加了固定属性的 logger（例如会话 ID）
type Bound struct {
	parent *LazyLogger
	attrs  []any
}

func (b *Bound) log(level slog.Level, msg string, args ...any) {
	b.parent.log(context.Background(), level, msg, append(append([]any{}, b.attrs...), args...)...)
}

// Debug 输出 Debug 级别日志
func (b *Bound) Debug(msg string, args ...any) { b.log(slog.LevelDebug, msg, args...) }

// Info 输出 Info 级别日志
func (b *Bound) Info(msg string, args ...any) { b.log(slog.LevelInfo, msg, args...) }

// Warn 输出 Warn 级别日志
func (b *Bound) Warn(msg string, args ...any) { b.log(slog.LevelWarn, msg, args...) }

// Error 输出 Error 级别日志
func (b *Bound) Error(msg string, args ...any) { b.log(slog.LevelError, msg, args...) }

// ============================================================================
//                              工具函数
// ============================================================================

// Truncate 安全截取字符串用于日志显示
//
// 负载内容可能很大（最多 64 KiB），日志中只保留前 maxLen 字节。
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
