package transport

import (
	"go.uber.org/fx"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// Dialers 协商使用的两个拨号器
type Dialers struct {
	fx.Out

	// Modern 首选传输（WebTransport）
	Modern Dialer `name:"modern"`

	// Fallback 回退传输（WebSocket）
	Fallback Dialer `name:"fallback"`
}

// NewDialers 从统一配置创建拨号器
func NewDialers(cfg *config.Config) (Dialers, error) {
	modern, err := NewWebTransportDialer(cfg.Client.WebTransport)
	if err != nil {
		return Dialers{}, err
	}
	fallback, err := NewWebSocketDialer(cfg.Client.WebSocket)
	if err != nil {
		return Dialers{}, err
	}
	logger.Debug("拨号器已创建", "modern", modern.Kind(), "fallback", fallback.Kind())
	return Dialers{Modern: modern, Fallback: fallback}, nil
}

// Module 返回传输层 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(NewDialers),
	)
}
