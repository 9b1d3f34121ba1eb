package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ClientConfig 客户端协商配置
//
// 协商顺序固定：先 WebTransport，失败后 WebSocket。
// 两种传输使用同一个服务地址，各自按规则改写 scheme，
// 端口与路径可以分别覆盖（WebTransport 走 UDP 4433，WebSocket 走 TCP 8080/ws）。
type ClientConfig struct {
	// ServerURL 默认服务地址（rtclient 未指定 -url 时使用）
	ServerURL string `json:"server_url,omitempty"`

	// NegotiateTimeout 整个协商过程的外部超时，0 表示仅依赖各传输的握手超时
	NegotiateTimeout Duration `json:"negotiate_timeout"`

	// PreferWebSocket 跳过 WebTransport 直接使用 WebSocket（UDP 被封锁的网络）
	PreferWebSocket bool `json:"prefer_websocket"`

	// WebTransport 首选传输配置
	WebTransport WebTransportClientConfig `json:"webtransport"`

	// WebSocket 回退传输配置
	WebSocket WebSocketClientConfig `json:"websocket"`
}

// WebTransportClientConfig WebTransport 拨号配置
type WebTransportClientConfig struct {
	// Port 覆盖地址中的端口，0 表示保持不变
	Port int `json:"port,omitempty"`

	// Path 覆盖地址中的路径，空表示保持不变
	Path string `json:"path,omitempty"`

	// HandshakeTimeout QUIC + HTTP/3 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// MaxIdleTimeout 连接空闲超时
	MaxIdleTimeout Duration `json:"max_idle_timeout"`

	// KeepAlivePeriod KeepAlive 间隔
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// ReplyTimeout 等待 ACK 的超时
	ReplyTimeout Duration `json:"reply_timeout"`

	// InsecureSkipVerify 跳过证书校验（仅开发环境）
	InsecureSkipVerify bool `json:"insecure_skip_verify"`

	// CAFile PEM 格式的根证书文件
	CAFile string `json:"ca_file,omitempty"`

	// CertHashes 服务端叶子证书的 SHA-256 指纹（十六进制），非空时按指纹校验
	CertHashes []string `json:"cert_hashes,omitempty"`
}

// WebSocketClientConfig WebSocket 拨号配置
type WebSocketClientConfig struct {
	// Scheme 强制使用 ws 或 wss，空表示由地址 scheme 推导
	Scheme string `json:"scheme,omitempty"`

	// Port 覆盖地址中的端口，0 表示保持不变
	Port int `json:"port,omitempty"`

	// Path 覆盖地址中的路径，空表示保持不变
	Path string `json:"path,omitempty"`

	// HandshakeTimeout 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// ReadBufferSize 读缓冲区大小
	ReadBufferSize int `json:"read_buffer_size"`

	// WriteBufferSize 写缓冲区大小
	WriteBufferSize int `json:"write_buffer_size"`

	// EnableCompression 是否协商 permessage-deflate
	EnableCompression bool `json:"enable_compression"`

	// InsecureSkipVerify wss 下跳过证书校验（仅开发环境）
	InsecureSkipVerify bool `json:"insecure_skip_verify"`

	// MessageBuffer 接收队列长度，满时丢弃最旧的消息
	MessageBuffer int `json:"message_buffer"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:        "https://localhost:4433/",
		NegotiateTimeout: Duration(15 * time.Second),
		PreferWebSocket:  false,
		WebTransport: WebTransportClientConfig{
			HandshakeTimeout: Duration(5 * time.Second),
			MaxIdleTimeout:   Duration(30 * time.Second),
			KeepAlivePeriod:  Duration(3 * time.Second), // 与服务端一致
			ReplyTimeout:     Duration(5 * time.Second),
		},
		WebSocket: WebSocketClientConfig{
			Scheme:           "ws", // 服务端 HTTP 监听器默认是明文
			Port:             8080,
			Path:             "/ws",
			HandshakeTimeout: Duration(10 * time.Second),
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			MessageBuffer:    64,
		},
	}
}

// Validate 验证客户端配置
func (c ClientConfig) Validate() error {
	if c.NegotiateTimeout < 0 {
		return errors.New("negotiate timeout must not be negative")
	}
	if err := c.WebTransport.Validate(); err != nil {
		return fmt.Errorf("webtransport: %w", err)
	}
	if err := c.WebSocket.Validate(); err != nil {
		return fmt.Errorf("websocket: %w", err)
	}
	return nil
}

// Validate 验证 WebTransport 客户端配置
func (c WebTransportClientConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	if c.MaxIdleTimeout <= 0 {
		return errors.New("max idle timeout must be positive")
	}
	if c.ReplyTimeout <= 0 {
		return errors.New("reply timeout must be positive")
	}
	for _, h := range c.CertHashes {
		if _, err := DecodeCertHash(h); err != nil {
			return err
		}
	}
	return nil
}

// Validate 验证 WebSocket 客户端配置
func (c WebSocketClientConfig) Validate() error {
	switch c.Scheme {
	case "", "ws", "wss":
	default:
		return fmt.Errorf("invalid scheme %q", c.Scheme)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return errors.New("buffer sizes must be positive")
	}
	if c.MessageBuffer <= 0 {
		return errors.New("message buffer must be positive")
	}
	return nil
}

// DecodeCertHash 解析十六进制 SHA-256 指纹，允许冒号分隔
func DecodeCertHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(s), ":", ""))
	if err != nil {
		return out, fmt.Errorf("invalid cert hash %q: %w", s, err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("invalid cert hash %q: want 32 bytes, got %d", s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// WithServerURL 设置默认服务地址
func (c ClientConfig) WithServerURL(url string) ClientConfig {
	c.ServerURL = url
	return c
}

// WithPreferWebSocket 设置是否跳过 WebTransport
func (c ClientConfig) WithPreferWebSocket(prefer bool) ClientConfig {
	c.PreferWebSocket = prefer
	return c
}

// WithNegotiateTimeout 设置协商超时
func (c ClientConfig) WithNegotiateTimeout(timeout time.Duration) ClientConfig {
	c.NegotiateTimeout = Duration(timeout)
	return c
}
