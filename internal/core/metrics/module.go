package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module 返回 metrics 的 Fx 模块
//
// 提供 *prometheus.Registry（同时作为 Gatherer 供 /metrics 使用）
// 和 Reporter。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			NewRegistry,
			func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
			fx.Annotate(
				func(reg *prometheus.Registry) *Collector { return New(reg) },
				fx.As(new(Reporter)),
				fx.As(fx.Self()),
			),
		),
	)
}
