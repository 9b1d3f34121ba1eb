package rtlink

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
)

// Option Dial 配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	cfg      *config.Config
	reporter metrics.Reporter
}

func newOptions() *options {
	return &options{cfg: config.NewConfig()}
}

func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return o.cfg.Client.Validate()
}

// WithConfig 使用完整配置作为起点
//
// 之后的选项在其基础上修改；cfg 本身不会被改动。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c := *cfg
		c.Client.WebTransport.CertHashes = append([]string(nil), cfg.Client.WebTransport.CertHashes...)
		o.cfg = &c
		return nil
	}
}

// WithWebTransportPort 覆盖 WebTransport 端口，0 表示使用地址中的端口
func WithWebTransportPort(port int) Option {
	return func(o *options) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid webtransport port %d", port)
		}
		o.cfg.Client.WebTransport.Port = port
		return nil
	}
}

// WithWebSocketPort 覆盖 WebSocket 端口，0 表示使用地址中的端口
func WithWebSocketPort(port int) Option {
	return func(o *options) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid websocket port %d", port)
		}
		o.cfg.Client.WebSocket.Port = port
		return nil
	}
}

// WithWebSocketPath 覆盖 WebSocket 路径
func WithWebSocketPath(path string) Option {
	return func(o *options) error {
		o.cfg.Client.WebSocket.Path = path
		return nil
	}
}

// WithInsecureSkipVerify 跳过证书校验（仅开发环境）
func WithInsecureSkipVerify() Option {
	return func(o *options) error {
		o.cfg.Client.WebTransport.InsecureSkipVerify = true
		o.cfg.Client.WebSocket.InsecureSkipVerify = true
		return nil
	}
}

// WithCertHashes 按 SHA-256 指纹校验服务端证书（十六进制）
func WithCertHashes(hashes ...string) Option {
	return func(o *options) error {
		for _, h := range hashes {
			if _, err := config.DecodeCertHash(h); err != nil {
				return err
			}
		}
		o.cfg.Client.WebTransport.CertHashes = append(o.cfg.Client.WebTransport.CertHashes, hashes...)
		return nil
	}
}

// WithNegotiateTimeout 设置整个协商过程的超时，0 表示不设外部超时
func WithNegotiateTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("negotiate timeout must not be negative")
		}
		o.cfg.Client.NegotiateTimeout = config.Duration(d)
		return nil
	}
}

// WithHandshakeTimeout 设置两种传输各自的握手超时
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("handshake timeout must be positive")
		}
		o.cfg.Client.WebTransport.HandshakeTimeout = config.Duration(d)
		o.cfg.Client.WebSocket.HandshakeTimeout = config.Duration(d)
		return nil
	}
}

// WithPreferWebSocket 跳过 WebTransport，直接使用 WebSocket
func WithPreferWebSocket(prefer bool) Option {
	return func(o *options) error {
		o.cfg.Client.PreferWebSocket = prefer
		return nil
	}
}

// WithMetrics 将协商结果注册到 Prometheus
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer is nil")
		}
		o.reporter = metrics.New(reg)
		return nil
	}
}
