package negotiate

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/core/transport"
	"github.com/hudwiz/go-rtlink/internal/server/wsecho"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// callLog 记录拨号器调用顺序
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeDialer 在 mock 时钟上耗时 delay，然后返回 err 或真实的 WebSocket 句柄
type fakeDialer struct {
	kind  types.TransportKind
	clk   *clock.Mock
	delay time.Duration
	err   error
	log   *callLog
	dial  transport.Dialer
	hook  func()
}

func (f *fakeDialer) Kind() types.TransportKind { return f.kind }

func (f *fakeDialer) Connect(ctx context.Context, address string) (*transport.Handle, error) {
	f.log.add(f.kind.String() + ":start")
	defer f.log.add(f.kind.String() + ":end")

	f.clk.Add(f.delay)
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, &types.ConnectError{Kind: f.kind, Address: address, Reason: types.ReasonIO, Err: f.err}
	}
	return f.dial.Connect(ctx, address)
}

// echoDialer 返回连接到本地回显服务器的真实拨号器与地址
func echoDialer(t *testing.T) (transport.Dialer, string) {
	t.Helper()
	srv := httptest.NewServer(wsecho.New(config.DefaultServerConfig().HTTP, nil))
	t.Cleanup(srv.Close)

	cfg := config.DefaultClientConfig().WebSocket
	cfg.Scheme, cfg.Port, cfg.Path = "", 0, ""
	d, err := transport.NewWebSocketDialer(cfg)
	require.NoError(t, err)
	return d, srv.URL
}

// ============================================================================
//                              协商测试
// ============================================================================

// TestNegotiate_ModernSucceeds WebTransport 成功时不尝试 WebSocket
func TestNegotiate_ModernSucceeds(t *testing.T) {
	clk := clock.NewMock()
	echo, addr := echoDialer(t)
	calls := &callLog{}

	modern := &fakeDialer{kind: types.KindWebTransport, clk: clk, delay: time.Second, log: calls, dial: echo}
	fallback := &fakeDialer{kind: types.KindWebSocket, clk: clk, log: calls, dial: echo}

	m := NewManager(modern, fallback, WithClock(clk))
	h, kind, err := m.Negotiate(context.Background(), addr)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, types.KindWebTransport, kind)
	assert.Equal(t, []string{"webtransport:start", "webtransport:end"}, calls.get())

	attempts := m.LastAttempts()
	require.Len(t, attempts, 1)
	assert.Equal(t, time.Second, attempts[0].Duration())
	assert.NoError(t, attempts[0].Err)
}

// TestNegotiate_Fallback WebTransport 失败后回退到 WebSocket
func TestNegotiate_Fallback(t *testing.T) {
	clk := clock.NewMock()
	echo, addr := echoDialer(t)
	calls := &callLog{}
	reg := prometheus.NewRegistry()

	modern := &fakeDialer{kind: types.KindWebTransport, clk: clk, delay: 2 * time.Second, err: errors.New("udp blocked"), log: calls}
	fallback := &fakeDialer{kind: types.KindWebSocket, clk: clk, delay: 500 * time.Millisecond, log: calls, dial: echo}

	m := NewManager(modern, fallback, WithClock(clk), WithReporter(metrics.New(reg)))
	h, kind, err := m.Negotiate(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, h)
	defer h.Close()

	assert.Equal(t, types.KindWebSocket, kind)
	assert.Equal(t, types.KindWebSocket, h.Kind())
	require.NoError(t, h.Send(context.Background(), "ping"))

	// WebSocket 尝试在 WebTransport 返回之后才开始
	assert.Equal(t, []string{
		"webtransport:start", "webtransport:end",
		"websocket:start", "websocket:end",
	}, calls.get())

	attempts := m.LastAttempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, types.KindWebTransport, attempts[0].Kind)
	assert.Equal(t, types.KindWebSocket, attempts[1].Kind)
	assert.False(t, attempts[1].Started.Before(attempts[0].Finished))
	assert.Equal(t, 2*time.Second, attempts[0].Duration())

	t.Log("✅ WebTransport 失败后回退到 WebSocket")
}

// TestNegotiate_BothFail 两者都失败时保留两个错误
func TestNegotiate_BothFail(t *testing.T) {
	clk := clock.NewMock()
	calls := &callLog{}
	modernCause := errors.New("quic handshake timeout")
	fallbackCause := errors.New("connection refused")

	modern := &fakeDialer{kind: types.KindWebTransport, clk: clk, err: modernCause, log: calls}
	fallback := &fakeDialer{kind: types.KindWebSocket, clk: clk, err: fallbackCause, log: calls}

	m := NewManager(modern, fallback, WithClock(clk))
	h, kind, err := m.Negotiate(context.Background(), "https://127.0.0.1:1/")
	assert.Nil(t, h)
	assert.Equal(t, types.KindUnknown, kind)

	var nerr *NegotiationError
	require.ErrorAs(t, err, &nerr)
	assert.ErrorIs(t, err, modernCause)
	assert.ErrorIs(t, err, fallbackCause)
	assert.ErrorIs(t, nerr.Fallback, fallbackCause, "Fallback 是第二次失败")
	assert.Len(t, nerr.Attempts, 2)
	assert.Contains(t, err.Error(), "webtransport")
	assert.Contains(t, err.Error(), "websocket")

	var ce *types.ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, types.KindWebTransport, ce.Kind)
}

// TestNegotiate_CancelledSkipsFallback ctx 结束后不再发起回退
func TestNegotiate_CancelledSkipsFallback(t *testing.T) {
	clk := clock.NewMock()
	calls := &callLog{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	modern := &fakeDialer{kind: types.KindWebTransport, clk: clk, err: context.Canceled, log: calls, hook: cancel}
	fallback := &fakeDialer{kind: types.KindWebSocket, clk: clk, log: calls}

	m := NewManager(modern, fallback, WithClock(clk))
	_, _, err := m.Negotiate(ctx, "https://127.0.0.1:1/")

	assert.ErrorIs(t, err, ErrFallbackSkipped)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"webtransport:start", "webtransport:end"}, calls.get())
}

// TestNegotiate_PreferWebSocket 跳过 WebTransport
func TestNegotiate_PreferWebSocket(t *testing.T) {
	clk := clock.NewMock()
	echo, addr := echoDialer(t)
	calls := &callLog{}

	modern := &fakeDialer{kind: types.KindWebTransport, clk: clk, log: calls, dial: echo}
	fallback := &fakeDialer{kind: types.KindWebSocket, clk: clk, log: calls, dial: echo}

	m := NewManager(modern, fallback, WithClock(clk), WithPreferWebSocket(true))
	h, kind, err := m.Negotiate(context.Background(), addr)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, types.KindWebSocket, kind)
	assert.Equal(t, []string{"websocket:start", "websocket:end"}, calls.get())
}

// TestNegotiate_ScenarioBadScheme 真实拨号器：未知 scheme 回退到 WebSocket
func TestNegotiate_ScenarioBadScheme(t *testing.T) {
	srv := httptest.NewServer(wsecho.New(config.DefaultServerConfig().HTTP, nil))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.Client.WebSocket.Scheme, cfg.Client.WebSocket.Port, cfg.Client.WebSocket.Path = "", 0, ""

	modern, err := transport.NewWebTransportDialer(cfg.Client.WebTransport)
	require.NoError(t, err)
	fallback, err := transport.NewWebSocketDialer(cfg.Client.WebSocket)
	require.NoError(t, err)

	address := "bad-modern://" + srv.Listener.Addr().String() + "/ws"
	h, kind, err := NewManager(modern, fallback).Negotiate(context.Background(), address)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, types.KindWebSocket, kind)
	assert.Equal(t, "websocket", kind.String())
}

func TestNegotiationError_ModernSkipped(t *testing.T) {
	err := &NegotiationError{Fallback: errors.New("refused")}
	assert.Equal(t, "negotiation failed: websocket: refused", err.Error())
	assert.Len(t, err.Unwrap(), 1)
}
