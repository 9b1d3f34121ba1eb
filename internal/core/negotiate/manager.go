package negotiate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/core/transport"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

var logger = log.Logger("core/negotiate")

// Attempt 一次建连尝试的记录
type Attempt struct {
	Kind     types.TransportKind
	Started  time.Time
	Finished time.Time
	Err      error
}

// Duration 返回尝试耗时
func (a Attempt) Duration() time.Duration {
	return a.Finished.Sub(a.Started)
}

// Manager 传输协商管理器
//
// 可被多个 goroutine 并发使用；LastAttempts 反映最近一次完成的协商。
type Manager struct {
	modern   transport.Dialer
	fallback transport.Dialer

	clock           clock.Clock
	preferWebSocket bool
	reporter        metrics.Reporter

	mu   sync.Mutex
	last []Attempt
}

// Option 协商管理器选项
type Option func(*Manager)

// WithClock 设置记录尝试时间的时钟
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) {
		m.clock = clk
	}
}

// WithPreferWebSocket 跳过 WebTransport 直接使用 WebSocket
func WithPreferWebSocket(prefer bool) Option {
	return func(m *Manager) {
		m.preferWebSocket = prefer
	}
}

// WithReporter 设置指标收集器
func WithReporter(r metrics.Reporter) Option {
	return func(m *Manager) {
		if r != nil {
			m.reporter = r
		}
	}
}

// NewManager 创建协商管理器
func NewManager(modern, fallback transport.Dialer, opts ...Option) *Manager {
	m := &Manager{
		modern:   modern,
		fallback: fallback,
		clock:    clock.New(),
		reporter: (*metrics.Collector)(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Negotiate 依次尝试 WebTransport 与 WebSocket
//
// 成功时调用方拥有返回的 Handle；失败时返回 *NegotiationError。
func (m *Manager) Negotiate(ctx context.Context, address string) (*transport.Handle, types.TransportKind, error) {
	attempts := make([]Attempt, 0, 2)
	var modernErr error

	if !m.preferWebSocket {
		h, a := m.attempt(ctx, m.modern, types.KindWebTransport, address)
		attempts = append(attempts, a)
		if a.Err == nil {
			m.finish(attempts, types.KindWebTransport, nil)
			return h, types.KindWebTransport, nil
		}
		modernErr = a.Err
		logger.Warn("WebTransport 建连失败，回退到 WebSocket", "address", address, "error", a.Err)

		if err := ctx.Err(); err != nil {
			nerr := &NegotiationError{
				Modern:   modernErr,
				Fallback: fmt.Errorf("%w: %w", ErrFallbackSkipped, err),
				Attempts: attempts,
			}
			m.finish(attempts, types.KindUnknown, nerr)
			return nil, types.KindUnknown, nerr
		}
	}

	h, a := m.attempt(ctx, m.fallback, types.KindWebSocket, address)
	attempts = append(attempts, a)
	if a.Err == nil {
		m.finish(attempts, types.KindWebSocket, nil)
		return h, types.KindWebSocket, nil
	}
	logger.Error("WebSocket 建连失败", "address", address, "error", a.Err)

	nerr := &NegotiationError{Modern: modernErr, Fallback: a.Err, Attempts: attempts}
	m.finish(attempts, types.KindUnknown, nerr)
	return nil, types.KindUnknown, nerr
}

func (m *Manager) attempt(ctx context.Context, d transport.Dialer, kind types.TransportKind, address string) (*transport.Handle, Attempt) {
	a := Attempt{Kind: kind, Started: m.clock.Now()}
	h, err := d.Connect(ctx, address)
	a.Finished = m.clock.Now()
	a.Err = err
	if err == nil && h == nil {
		a.Err = fmt.Errorf("%s dialer returned no handle", kind)
	}
	logger.Debug("建连尝试结束", "kind", kind, "duration", a.Duration(), "error", a.Err)
	return h, a
}

func (m *Manager) finish(attempts []Attempt, kind types.TransportKind, err error) {
	m.mu.Lock()
	m.last = attempts
	m.mu.Unlock()

	m.reporter.Negotiated(kind, err)
	if err == nil {
		logger.Info("传输协商完成", "kind", kind)
	}
}

// LastAttempts 返回最近一次协商的尝试记录
func (m *Manager) LastAttempts() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Attempt(nil), m.last...)
}
