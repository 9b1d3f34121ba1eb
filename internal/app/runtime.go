package app

import (
	"context"

	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/server/httpserver"
	"github.com/hudwiz/go-rtlink/internal/server/mux"
)

// Runtime 表示一个已通过 fx 组装并启动的服务端
type Runtime struct {
	// Identity WebTransport 使用的 TLS 身份
	Identity *certs.Identity

	// WebTransport UDP 监听器，禁用时未绑定端口
	WebTransport *mux.Server

	// HTTP TCP 监听器（/ws、/metrics、/healthz）
	HTTP *httpserver.Server

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
