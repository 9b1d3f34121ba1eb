package httpserver

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/server/wsecho"
)

// Params HTTP 监听器依赖参数
type Params struct {
	fx.In

	Config   *config.Config
	Reporter metrics.Reporter    `optional:"true"`
	Gatherer prometheus.Gatherer `optional:"true"`
}

// NewFromParams 从 Fx 参数创建 HTTP 监听器
func NewFromParams(p Params) *Server {
	cfg := p.Config.Server.HTTP
	return New(cfg, wsecho.New(cfg, p.Reporter), p.Gatherer)
}

// registerLifecycle 注册生命周期
func registerLifecycle(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// Module 返回 HTTP 监听器 Fx 模块
func Module() fx.Option {
	return fx.Module("httpserver",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}
