package app

import "time"

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// BuildOptions 构建选项
type BuildOptions struct {
	// StartTimeout 启动超时
	StartTimeout time.Duration

	// StopTimeout 停止超时
	StopTimeout time.Duration

	// Verbose 输出 Fx 事件日志
	Verbose bool

	// SkipLogSetup 不调用 log.Setup（测试或嵌入时保留调用方的日志配置）
	SkipLogSetup bool
}

// DefaultBuildOptions 默认构建选项
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		StartTimeout: 30 * time.Second,
		StopTimeout:  30 * time.Second,
	}
}

// WithVerbose 输出 Fx 事件日志
func WithVerbose(verbose bool) BootstrapOption {
	return func(b *Bootstrap) {
		b.opts.Verbose = verbose
	}
}

// WithTimeouts 设置启动与停止超时
func WithTimeouts(start, stop time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if start > 0 {
			b.opts.StartTimeout = start
		}
		if stop > 0 {
			b.opts.StopTimeout = stop
		}
	}
}

// WithoutLogSetup 保留调用方的日志配置
func WithoutLogSetup() BootstrapOption {
	return func(b *Bootstrap) {
		b.opts.SkipLogSetup = true
	}
}
