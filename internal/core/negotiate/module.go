package negotiate

import (
	"go.uber.org/fx"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/core/transport"
)

// Params 协商管理器依赖参数
type Params struct {
	fx.In

	Config   *config.Config
	Modern   transport.Dialer `name:"modern"`
	Fallback transport.Dialer `name:"fallback"`
	Reporter metrics.Reporter `optional:"true"`
}

// NewFromParams 从 Fx 参数创建协商管理器
func NewFromParams(p Params) *Manager {
	return NewManager(p.Modern, p.Fallback,
		WithPreferWebSocket(p.Config.Client.PreferWebSocket),
		WithReporter(p.Reporter),
	)
}

// Module 返回协商 Fx 模块
func Module() fx.Option {
	return fx.Module("negotiate",
		fx.Provide(NewFromParams),
	)
}
