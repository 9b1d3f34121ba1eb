package transport

import (
	"context"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/transport/webtransport"
	"github.com/hudwiz/go-rtlink/internal/core/transport/websocket"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// Dialer 单次建连
//
// Connect 只尝试一次握手，受自身握手超时与 ctx 限制，失败返回 *ConnectError。
type Dialer interface {
	// Kind 返回拨号器建立的传输类型
	Kind() types.TransportKind

	// Connect 建立连接，成功后调用方拥有返回的 Handle
	Connect(ctx context.Context, address string) (*Handle, error)
}

// ============================================================================
//                              WebTransport
// ============================================================================

type webTransportDialer struct {
	d *webtransport.Dialer
}

// NewWebTransportDialer 创建 WebTransport 拨号器
func NewWebTransportDialer(cfg config.WebTransportClientConfig) (Dialer, error) {
	d, err := webtransport.NewDialer(cfg)
	if err != nil {
		return nil, err
	}
	return &webTransportDialer{d: d}, nil
}

func (w *webTransportDialer) Kind() types.TransportKind {
	return types.KindWebTransport
}

func (w *webTransportDialer) Connect(ctx context.Context, address string) (*Handle, error) {
	c, err := w.d.Dial(ctx, address)
	if err != nil {
		return nil, err
	}
	return NewWebTransportHandle(c), nil
}

// ============================================================================
//                              WebSocket
// ============================================================================

type webSocketDialer struct {
	d *websocket.Dialer
}

// NewWebSocketDialer 创建 WebSocket 拨号器
func NewWebSocketDialer(cfg config.WebSocketClientConfig) (Dialer, error) {
	d, err := websocket.NewDialer(cfg)
	if err != nil {
		return nil, err
	}
	return &webSocketDialer{d: d}, nil
}

func (w *webSocketDialer) Kind() types.TransportKind {
	return types.KindWebSocket
}

func (w *webSocketDialer) Connect(ctx context.Context, address string) (*Handle, error) {
	c, err := w.d.Dial(ctx, address)
	if err != nil {
		return nil, err
	}
	return NewWebSocketHandle(c), nil
}
