package rtlink

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hudwiz/go-rtlink/internal/app"
	"github.com/hudwiz/go-rtlink/internal/core/transport"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("rtlink")

// noCopy 禁止值拷贝（go vet copylocks 检查）
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Client 已完成协商的实时连接
//
// Client 只以指针形式使用，两个 Client 仅在指针相同时相等。
// 协商得到的传输类型在生命周期内不变；连接断开后不会重连。
type Client struct {
	_ noCopy

	handle   *transport.Handle
	kind     TransportKind
	attempts []Attempt

	closeOnce sync.Once
	closeErr  error
}

// Dial 连接服务端：先 WebTransport，失败后 WebSocket
//
// 成功时调用方拥有返回的 Client，必须调用 Close。
// 两种传输都失败时返回 *NegotiationError。
func Dial(ctx context.Context, serverURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(serverURL) == "" {
		return nil, ErrEmptyURL
	}

	o := newOptions()
	if err := o.apply(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	m, err := app.NewManager(o.cfg, o.reporter)
	if err != nil {
		return nil, err
	}

	if d := o.cfg.Client.NegotiateTimeout.Duration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	h, kind, err := m.Negotiate(ctx, serverURL)
	if err != nil {
		return nil, err
	}

	logger.Info("已连接", "url", serverURL, "kind", kind)
	return &Client{
		handle:   h,
		kind:     kind,
		attempts: m.LastAttempts(),
	}, nil
}

// Send 发送一条消息
//
// WebTransport 上等待服务端 ACK；WebSocket 上写出即返回。
// 失败返回 *SendError，不会重新协商。
func (c *Client) Send(ctx context.Context, message string) error {
	return c.handle.Send(ctx, message)
}

// Kind 返回协商得到的传输类型
func (c *Client) Kind() TransportKind {
	return c.kind
}

// Attempts 返回协商过程中的尝试记录
func (c *Client) Attempts() []Attempt {
	return append([]Attempt(nil), c.attempts...)
}

// Done 返回连接结束时关闭的 channel
func (c *Client) Done() <-chan struct{} {
	return c.handle.Done()
}

// Close 关闭连接（幂等）
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.handle.Close()
		logger.Debug("客户端已关闭", "kind", c.kind)
	})
	return c.closeErr
}
