package mux

import (
	"context"

	"go.uber.org/fx"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
)

// Params 监听器依赖参数
type Params struct {
	fx.In

	Config   *config.Config
	Identity *certs.Identity
	Reporter metrics.Reporter `optional:"true"`
}

// NewFromParams 从 Fx 参数创建监听器
func NewFromParams(p Params) *Server {
	return New(p.Config.Server.WebTransport, p.Identity, p.Reporter)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Server *Server
}

// registerLifecycle 注册生命周期
//
// 监听器未启用时不绑定端口。
func registerLifecycle(in lifecycleInput) {
	if !in.Config.Server.WebTransport.Enable {
		logger.Info("WebTransport 监听器已禁用")
		return
	}
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return in.Server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return in.Server.Shutdown(ctx)
		},
	})
}

// Module 返回 WebTransport 监听器 Fx 模块
func Module() fx.Option {
	return fx.Module("mux",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}
