// Package app 提供 rtlink 应用编排层
//
// app 包负责：
//   - fx 模块组装
//   - 依赖注入协调
//   - 生命周期管理
package app

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/server/httpserver"
	"github.com/hudwiz/go-rtlink/internal/server/mux"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("app")

// Bootstrap 服务端引导程序
//
// Bootstrap 负责：
//   - 校验配置并初始化日志
//   - 组装 fx 模块
//   - 管理应用生命周期
type Bootstrap struct {
	config *config.Config
	opts   BuildOptions
	fxApp  *fx.App

	identity   *certs.Identity
	webTrans   *mux.Server
	httpServer *httpserver.Server
}

// NewBootstrap 创建引导程序
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config: cfg,
		opts:   DefaultBuildOptions(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 构建服务端（不启动）
func (b *Bootstrap) Build() error {
	if b.config == nil {
		b.config = config.NewConfig()
	}
	if err := b.config.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	if !b.opts.SkipLogSetup {
		log.Setup(b.config.Log.Options())
	}

	b.fxApp = fx.New(
		fx.Supply(b.config),
		ServerModules(),
		fx.WithLogger(b.fxLogger),
		fx.Populate(&b.identity, &b.webTrans, &b.httpServer),
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("组装模块失败: %w", err)
	}
	return nil
}

// Start 构建并启动服务端
func (b *Bootstrap) Start(ctx context.Context) (*Runtime, error) {
	if b.fxApp == nil {
		if err := b.Build(); err != nil {
			return nil, err
		}
	}

	startCtx, cancel := context.WithTimeout(ctx, b.opts.StartTimeout)
	defer cancel()

	if err := b.fxApp.Start(startCtx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}

	logger.Info("服务端已启动",
		"webtransport", addrString(b.webTrans.Addr()),
		"http", addrString(b.httpServer.Addr()),
		"cert_sha256", b.identity.HashHex())

	return &Runtime{
		Identity:     b.identity,
		WebTransport: b.webTrans,
		HTTP:         b.httpServer,
		stop:         b.Stop,
	}, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.opts.StopTimeout)
	defer cancel()

	return b.fxApp.Stop(stopCtx)
}

// fxLogger 默认丢弃 Fx 事件日志，Verbose 时输出到 zap
func (b *Bootstrap) fxLogger() fxevent.Logger {
	return newFxLogger(b.opts.Verbose)
}

func newFxLogger(verbose bool) fxevent.Logger {
	if !verbose {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	return &fxevent.ZapLogger{Logger: zl}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
