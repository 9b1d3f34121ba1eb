package websocket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

var logger = log.Logger("transport/websocket")

// Dialer WebSocket 拨号器
type Dialer struct {
	cfg    config.WebSocketClientConfig
	dialer *websocket.Dialer
}

// NewDialer 创建 WebSocket 拨号器
func NewDialer(cfg config.WebSocketClientConfig) (*Dialer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  cfg.HandshakeTimeout.Duration(),
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // 仅开发环境通过配置开启
			},
		},
	}, nil
}

// Dial 建立 WebSocket 连接
//
// 失败时返回 *types.ConnectError；握手被拒绝时错误中包含 HTTP 状态码。
func (d *Dialer) Dial(ctx context.Context, address string) (*Conn, error) {
	target, err := ResolveURL(address, d.cfg.Scheme, d.cfg.Port, d.cfg.Path)
	if err != nil {
		return nil, types.NewConnectError(types.KindWebSocket, address, types.ReasonUnsupported, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.HandshakeTimeout.Duration())
	defer cancel()

	logger.Debug("拨号 WebSocket", "url", target)
	ws, resp, err := d.dialer.DialContext(ctx, target, nil)
	// 关闭响应体（WebSocket 握手响应）
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		reason := types.ReasonIO
		var certErr *tls.CertificateVerificationError
		switch {
		case errors.Is(err, websocket.ErrBadHandshake):
			reason = types.ReasonHandshake
			if resp != nil {
				err = fmt.Errorf("%w: status %d", err, resp.StatusCode)
			}
		case errors.As(err, &certErr):
			reason = types.ReasonHandshake
		}
		logger.Debug("WebSocket 握手失败", "url", target, "reason", reason, "error", err)
		return nil, types.NewConnectError(types.KindWebSocket, address, reason, err)
	}

	logger.Info("WebSocket 连接已建立", "url", target, "remote", ws.RemoteAddr().String())
	return newConn(ws, d.cfg.MessageBuffer), nil
}
