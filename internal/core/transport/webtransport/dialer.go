package webtransport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/quic-go/quic-go"
	wt "github.com/quic-go/webtransport-go"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

var logger = log.Logger("transport/webtransport")

// Dialer WebTransport 拨号器
//
// 每次 Dial 只尝试一次握手，不重试；握手超时由配置限定。
type Dialer struct {
	cfg      config.WebTransportClientConfig
	tlsConf  *tls.Config
	quicConf *quic.Config
}

// NewDialer 创建 WebTransport 拨号器
func NewDialer(cfg config.WebTransportClientConfig) (*Dialer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("webtransport config: %w", err)
	}
	tlsConf, err := clientTLSConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Dialer{
		cfg:     cfg,
		tlsConf: tlsConf,
		quicConf: &quic.Config{
			HandshakeIdleTimeout: cfg.HandshakeTimeout.Duration(),
			MaxIdleTimeout:       cfg.MaxIdleTimeout.Duration(),
			// 与服务端一致的 3s KeepAlive，保持 NAT 映射
			KeepAlivePeriod: cfg.KeepAlivePeriod.Duration(),
			EnableDatagrams: true,
		},
	}, nil
}

// Dial 建立 WebTransport 会话
//
// 失败时返回 *types.ConnectError，已建立的部分连接会被释放。
func (d *Dialer) Dial(ctx context.Context, address string) (*Conn, error) {
	target, err := ResolveURL(address, d.cfg.Port, d.cfg.Path)
	if err != nil {
		return nil, types.NewConnectError(types.KindWebTransport, address, types.ReasonUnsupported, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.HandshakeTimeout.Duration())
	defer cancel()

	ep := &endpoint{}
	dialer := &wt.Dialer{
		TLSClientConfig: d.tlsConf.Clone(),
		QUICConfig:      d.quicConf.Clone(),
		DialAddr:        ep.dial,
	}

	// 等待 SETTINGS 阶段不受 ctx 控制，超时后关闭 dialer 使其返回
	stop := context.AfterFunc(ctx, func() {
		if ep.connected() {
			_ = dialer.Close()
		}
	})

	logger.Debug("拨号 WebTransport", "url", target)
	rsp, sess, err := dialer.Dial(ctx, target, nil)
	stop()
	if err == nil && ctx.Err() != nil {
		// Dial 成功与超时同时发生，按超时处理
		_ = sess.CloseWithError(codeCancelled, "handshake timeout")
		rsp, err = nil, ctx.Err()
	}
	if err != nil {
		_ = dialer.Close()
		ep.close()
		reason := classify(rsp, err)
		logger.Debug("WebTransport 握手失败", "url", target, "reason", reason, "error", err)
		return nil, types.NewConnectError(types.KindWebTransport, address, reason, err)
	}

	logger.Info("WebTransport 会话已建立", "url", target, "remote", ep.remoteAddr())
	return newConn(sess, dialer, ep, d.cfg.ReplyTimeout.Duration()), nil
}

// classify 将握手错误归类
func classify(rsp *http.Response, err error) types.ConnectReason {
	// 收到 HTTP 响应但状态码不是 2xx
	if rsp != nil {
		return types.ReasonHandshake
	}
	var terr *quic.TransportError
	if errors.As(err, &terr) && terr.ErrorCode.IsCryptoError() {
		return types.ReasonHandshake
	}
	return types.ReasonIO
}

// ============================================================================
//                              endpoint - 独占 UDP socket
// ============================================================================

// endpoint 每个会话独占的 UDP socket 与 QUIC 连接
//
// 会话关闭时一并释放，避免连接滞留在共享连接池中。
type endpoint struct {
	mu    sync.Mutex
	udp   *net.UDPConn
	tr    *quic.Transport
	qconn quic.EarlyConnection
}

func (e *endpoint) dial(ctx context.Context, addr string, tlsConf *tls.Config, conf *quic.Config) (quic.EarlyConnection, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	udp, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("listen udp for dial: %w", err)
	}
	tr := &quic.Transport{Conn: udp}

	qconn, err := tr.DialEarly(ctx, raddr, tlsConf, conf)
	if err != nil {
		_ = tr.Close()
		_ = udp.Close()
		return nil, err
	}

	e.mu.Lock()
	e.udp, e.tr, e.qconn = udp, tr, qconn
	e.mu.Unlock()
	return qconn, nil
}

// connected QUIC 连接是否已建立（此时 dialer 已完成初始化）
func (e *endpoint) connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.qconn != nil
}

func (e *endpoint) remoteAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.qconn == nil {
		return ""
	}
	return e.qconn.RemoteAddr().String()
}

func (e *endpoint) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.qconn != nil {
		_ = e.qconn.CloseWithError(0, "")
	}
	if e.tr != nil {
		_ = e.tr.Close()
	}
	if e.udp != nil {
		_ = e.udp.Close()
	}
}
