package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig 服务端配置
//
// 服务端包含两个监听器：
//   - WebTransport: UDP，默认 :4433，对流和数据报回复 ACK
//   - HTTP: TCP，默认 127.0.0.1:8080，/ws 原样回显
type ServerConfig struct {
	// WebTransport WebTransport 监听器配置
	WebTransport WebTransportServerConfig `json:"webtransport"`

	// HTTP HTTP 监听器配置
	HTTP HTTPServerConfig `json:"http"`

	// TLS WebTransport 使用的 TLS 身份
	TLS TLSConfig `json:"tls"`
}

// WebTransportServerConfig WebTransport 监听器配置
type WebTransportServerConfig struct {
	// Enable 是否启动 WebTransport 监听器
	Enable bool `json:"enable"`

	// ListenAddr UDP 监听地址
	ListenAddr string `json:"listen_addr"`

	// PathPrefix 只接受该前缀下的会话请求，"/" 表示全部接受
	PathPrefix string `json:"path_prefix"`

	// MaxIdleTimeout 连接空闲超时
	MaxIdleTimeout Duration `json:"max_idle_timeout"`

	// KeepAlivePeriod KeepAlive 间隔
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// MaxIncomingStreams 每个连接允许的双向流数量
	MaxIncomingStreams int64 `json:"max_incoming_streams"`

	// MaxIncomingUniStreams 每个连接允许的单向流数量
	MaxIncomingUniStreams int64 `json:"max_incoming_uni_streams"`

	// AllowedOrigins 允许的 Origin，空表示不检查
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// HTTPServerConfig HTTP 监听器配置
type HTTPServerConfig struct {
	// ListenAddr TCP 监听地址
	ListenAddr string `json:"listen_addr"`

	// WebSocketPath WebSocket 回显路径
	WebSocketPath string `json:"websocket_path"`

	// WebSocketReadLimit 单帧最大字节数，超过时关闭连接
	WebSocketReadLimit int64 `json:"websocket_read_limit"`

	// EnableMetrics 是否暴露 /metrics
	EnableMetrics bool `json:"enable_metrics"`

	// ReadHeaderTimeout 读取请求头超时
	ReadHeaderTimeout Duration `json:"read_header_timeout"`

	// AllowedOrigins 允许的 Origin，空表示不检查
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// TLSConfig TLS 身份配置
//
// CertFile 与 KeyFile 同时设置时加载证书；否则生成自签名证书（开发用）。
type TLSConfig struct {
	// CertFile PEM 证书文件
	CertFile string `json:"cert_file,omitempty"`

	// KeyFile PEM 私钥文件
	KeyFile string `json:"key_file,omitempty"`

	// SelfSignedHosts 自签名证书的 SAN 列表
	SelfSignedHosts []string `json:"self_signed_hosts,omitempty"`

	// SelfSignedValidity 自签名证书有效期，浏览器指纹校验要求不超过 14 天
	SelfSignedValidity Duration `json:"self_signed_validity"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		WebTransport: WebTransportServerConfig{
			Enable:                true,
			ListenAddr:            ":4433",
			PathPrefix:            "/",
			MaxIdleTimeout:        Duration(30 * time.Second),
			KeepAlivePeriod:       Duration(3 * time.Second),
			MaxIncomingStreams:    256,
			MaxIncomingUniStreams: 256,
		},
		HTTP: HTTPServerConfig{
			ListenAddr:         "127.0.0.1:8080",
			WebSocketPath:      "/ws",
			WebSocketReadLimit: 64 * 1024,
			EnableMetrics:      true,
			ReadHeaderTimeout:  Duration(10 * time.Second),
		},
		TLS: TLSConfig{
			SelfSignedHosts:    []string{"localhost", "127.0.0.1", "::1"},
			SelfSignedValidity: Duration(14 * 24 * time.Hour),
		},
	}
}

// Validate 验证服务端配置
func (c ServerConfig) Validate() error {
	if err := c.WebTransport.Validate(); err != nil {
		return fmt.Errorf("webtransport: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if c.WebTransport.Enable {
		if err := c.TLS.Validate(); err != nil {
			return fmt.Errorf("tls: %w", err)
		}
	}
	return nil
}

// Validate 验证 WebTransport 监听器配置
func (c WebTransportServerConfig) Validate() error {
	if !c.Enable {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen addr %q: %w", c.ListenAddr, err)
	}
	if !strings.HasPrefix(c.PathPrefix, "/") {
		return fmt.Errorf("path prefix %q must start with /", c.PathPrefix)
	}
	if c.MaxIdleTimeout <= 0 {
		return errors.New("max idle timeout must be positive")
	}
	if c.KeepAlivePeriod < 0 || (c.KeepAlivePeriod > 0 && c.KeepAlivePeriod >= c.MaxIdleTimeout) {
		return errors.New("keep alive period must be shorter than max idle timeout")
	}
	if c.MaxIncomingStreams <= 0 || c.MaxIncomingUniStreams <= 0 {
		return errors.New("stream limits must be positive")
	}
	return nil
}

// Validate 验证 HTTP 监听器配置
func (c HTTPServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen addr %q: %w", c.ListenAddr, err)
	}
	if !strings.HasPrefix(c.WebSocketPath, "/") {
		return fmt.Errorf("websocket path %q must start with /", c.WebSocketPath)
	}
	if c.WebSocketReadLimit <= 0 {
		return errors.New("websocket read limit must be positive")
	}
	return nil
}

// Validate 验证 TLS 配置
func (c TLSConfig) Validate() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("cert_file and key_file must be set together")
	}
	if c.CertFile == "" {
		if len(c.SelfSignedHosts) == 0 {
			return errors.New("self-signed certificate needs at least one host")
		}
		if c.SelfSignedValidity <= 0 {
			return errors.New("self-signed validity must be positive")
		}
	}
	return nil
}

// UsesSelfSigned 是否使用自签名证书
func (c TLSConfig) UsesSelfSigned() bool {
	return c.CertFile == ""
}

// WithWebTransportAddr 设置 WebTransport 监听地址
func (c ServerConfig) WithWebTransportAddr(addr string) ServerConfig {
	c.WebTransport.ListenAddr = addr
	return c
}

// WithHTTPAddr 设置 HTTP 监听地址
func (c ServerConfig) WithHTTPAddr(addr string) ServerConfig {
	c.HTTP.ListenAddr = addr
	return c
}

// WithCertificate 设置证书与私钥文件
func (c ServerConfig) WithCertificate(certFile, keyFile string) ServerConfig {
	c.TLS.CertFile = certFile
	c.TLS.KeyFile = keyFile
	return c
}
