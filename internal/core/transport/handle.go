package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/hudwiz/go-rtlink/internal/core/transport/webtransport"
	"github.com/hudwiz/go-rtlink/internal/core/transport/websocket"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// Handle 已建立的实时连接
//
// kind 决定 wt 与 ws 中哪一个非 nil，创建后不变。
// 只能由 NewWebTransportHandle / NewWebSocketHandle 构造。
type Handle struct {
	kind types.TransportKind
	wt   *webtransport.Conn
	ws   *websocket.Conn
}

// NewWebTransportHandle 包装 WebTransport 连接
func NewWebTransportHandle(c *webtransport.Conn) *Handle {
	return &Handle{kind: types.KindWebTransport, wt: c}
}

// NewWebSocketHandle 包装 WebSocket 连接
func NewWebSocketHandle(c *websocket.Conn) *Handle {
	return &Handle{kind: types.KindWebSocket, ws: c}
}

// Kind 返回连接的传输类型
func (h *Handle) Kind() types.TransportKind {
	return h.kind
}

// Send 在主通道上发送一帧
//
// 不缓冲、不合并。失败返回 *SendError。
func (h *Handle) Send(ctx context.Context, message string) error {
	var err error
	switch h.kind {
	case types.KindWebTransport:
		err = h.wt.Send(ctx, message)
	case types.KindWebSocket:
		err = h.ws.Send(ctx, message)
	default:
		h.invalid()
	}
	if err == nil {
		return nil
	}
	var se *SendError
	if errors.As(err, &se) {
		return err
	}
	return &SendError{Kind: h.kind, Err: err}
}

// Close 关闭连接并释放资源（幂等）
func (h *Handle) Close() error {
	switch h.kind {
	case types.KindWebTransport:
		return h.wt.Close()
	case types.KindWebSocket:
		return h.ws.Close()
	default:
		h.invalid()
		return nil
	}
}

// Done 返回连接结束时关闭的 channel
func (h *Handle) Done() <-chan struct{} {
	switch h.kind {
	case types.KindWebTransport:
		return h.wt.Done()
	case types.KindWebSocket:
		return h.ws.Done()
	default:
		h.invalid()
		return nil
	}
}

// WebTransport 返回底层 WebTransport 连接（单向流与数据报通道）
func (h *Handle) WebTransport() (*webtransport.Conn, bool) {
	return h.wt, h.kind == types.KindWebTransport
}

// WebSocket 返回底层 WebSocket 连接（接收回显消息）
func (h *Handle) WebSocket() (*websocket.Conn, bool) {
	return h.ws, h.kind == types.KindWebSocket
}

func (h *Handle) invalid() {
	panic(fmt.Sprintf("transport: handle with invalid kind %d", int(h.kind)))
}
