// Package app 提供模块集合清单
//
// modulesets.go 集中维护服务端与客户端各自装配哪些模块。
package app

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/core/negotiate"
	"github.com/hudwiz/go-rtlink/internal/core/transport"
	"github.com/hudwiz/go-rtlink/internal/server/httpserver"
	"github.com/hudwiz/go-rtlink/internal/server/mux"
)

// ServerModules 服务端模块组合
//
// 依赖顺序：metrics → certs → mux（UDP）/ httpserver（TCP）。
func ServerModules() fx.Option {
	return fx.Options(
		metrics.Module(),
		certs.Module(),
		mux.Module(),
		httpserver.Module(),
	)
}

// ClientModules 客户端模块组合
//
// 不包含 metrics：调用方通过 fx.Supply 提供 Reporter 时才统计。
func ClientModules() fx.Option {
	return fx.Options(
		transport.Module(),
		negotiate.Module(),
	)
}

// NewManager 通过客户端模块组合创建协商管理器
//
// reporter 可以为 nil。不注册生命周期钩子，无需 Start。
func NewManager(cfg *config.Config, reporter metrics.Reporter) (*negotiate.Manager, error) {
	if err := cfg.Client.Validate(); err != nil {
		return nil, fmt.Errorf("客户端配置无效: %w", err)
	}

	opts := []fx.Option{
		fx.Supply(cfg),
		ClientModules(),
		fx.WithLogger(func() fxevent.Logger { return newFxLogger(false) }),
	}
	if reporter != nil {
		opts = append(opts, fx.Provide(func() metrics.Reporter { return reporter }))
	}

	var m *negotiate.Manager
	opts = append(opts, fx.Populate(&m))

	fxApp := fx.New(opts...)
	if err := fxApp.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
