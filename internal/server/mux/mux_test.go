package mux

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quic-go/quic-go/http3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/core/transport/webtransport"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

type testServer struct {
	*Server
	id  *certs.Identity
	url string
}

func startServer(t *testing.T, prefix string) *testServer {
	t.Helper()

	id, err := certs.GenerateSelfSigned([]string{"127.0.0.1", "localhost"}, time.Hour)
	require.NoError(t, err)

	cfg := config.DefaultServerConfig().WebTransport
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.PathPrefix = prefix

	srv := New(cfg, id, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return &testServer{
		Server: srv,
		id:     id,
		url:    fmt.Sprintf("https://%s/", srv.Addr().String()),
	}
}

func (s *testServer) dial(t *testing.T, path string) *webtransport.Conn {
	t.Helper()
	conn, err := s.tryDial(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *testServer) tryDial(path string) (*webtransport.Conn, error) {
	cfg := config.DefaultClientConfig().WebTransport
	cfg.CertHashes = []string{s.id.HashHex()}
	cfg.Path = path

	d, err := webtransport.NewDialer(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Dial(ctx, s.url)
}

func sendCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ============================================================================
//                              回复约定
// ============================================================================

// TestServer_BiStreamAck 双向流收到 ACK
func TestServer_BiStreamAck(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Send(sendCtx(t), fmt.Sprintf("hello %d", i)))
	}

	t.Log("✅ 双向流每帧回复 ACK")
}

// TestServer_FrameLimit 恰好 64 KiB 被接受，多一个字节被拒绝且会话继续
func TestServer_FrameLimit(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")

	require.NoError(t, conn.Send(sendCtx(t), strings.Repeat("a", types.MaxFrameSize)))

	err := conn.Send(sendCtx(t), strings.Repeat("a", types.MaxFrameSize+1))
	require.Error(t, err, "超长帧不应收到 ACK")

	// 会话不受影响
	require.NoError(t, conn.Send(sendCtx(t), "still alive"))

	select {
	case <-conn.Done():
		t.Fatal("超长帧不应关闭会话")
	default:
	}

	t.Log("✅ 超长帧仅拒绝该流")
}

// TestServer_UniStreamAck 单向流通过服务端新开的单向流回复 ACK
func TestServer_UniStreamAck(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")

	require.NoError(t, conn.SendUni(sendCtx(t), "uni one"))
	require.NoError(t, conn.SendUni(sendCtx(t), "uni two"))

	t.Log("✅ 单向流回复 ACK")
}

// TestServer_EmptyStream 空流不回复 ACK，会话继续服务
func TestServer_EmptyStream(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")

	err := conn.Send(sendCtx(t), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnexpectedReply, "双向流应以空回复结束")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.Error(t, conn.SendUni(ctx, ""), "单向流不应收到回复流")

	require.NoError(t, conn.Send(sendCtx(t), "after empty"))
	require.NoError(t, conn.SendUni(sendCtx(t), "after empty"))

	select {
	case <-conn.Done():
		t.Fatal("空流不应关闭会话")
	default:
	}

	t.Log("✅ 空流不回复")
}

// TestServer_DatagramAck 数据报回复 ACK 数据报
func TestServer_DatagramAck(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")

	// 数据报不可靠，有限次重发
	var reply []byte
	for attempt := 0; attempt < 5 && reply == nil; attempt++ {
		require.NoError(t, conn.SendDatagram([]byte("ping")))

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		data, err := conn.ReceiveDatagram(ctx)
		cancel()
		if err == nil {
			reply = data
		}
	}

	require.NotNil(t, reply, "未收到数据报回复")
	assert.Equal(t, types.AckMessage, string(reply))

	t.Log("✅ 数据报回复 ACK")
}

// TestServer_InvalidUTF8 任一通道上的非 UTF-8 帧只关闭该会话
func TestServer_InvalidUTF8(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 0xfd}

	tests := []struct {
		name string
		send func(ctx context.Context, c *webtransport.Conn) error
		fail bool
	}{
		{
			name: "bi",
			send: func(ctx context.Context, c *webtransport.Conn) error { return c.Send(ctx, string(invalid)) },
			fail: true,
		},
		{
			name: "uni",
			send: func(ctx context.Context, c *webtransport.Conn) error { return c.SendUni(ctx, string(invalid)) },
			fail: true,
		},
		{
			// 数据报无回复，发送本身可能成功
			name: "datagram",
			send: func(_ context.Context, c *webtransport.Conn) error { return c.SendDatagram(invalid) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startServer(t, "/")
			bad := srv.dial(t, "/")
			good := srv.dial(t, "/")

			err := tt.send(sendCtx(t), bad)
			if tt.fail {
				require.Error(t, err)
			}

			deadline := time.After(5 * time.Second)
			for closed := false; !closed; {
				select {
				case <-bad.Done():
					closed = true
				case <-time.After(200 * time.Millisecond):
					// 数据报可能丢失，重发直到会话关闭
					if !tt.fail {
						_ = tt.send(sendCtx(t), bad)
					}
				case <-deadline:
					t.Fatal("会话应被关闭")
				}
			}

			require.NoError(t, good.Send(sendCtx(t), "unaffected"))
			require.NoError(t, good.SendUni(sendCtx(t), "unaffected"))
		})
	}

	t.Log("✅ 非 UTF-8 帧只影响所在会话")
}

// TestServer_ConcurrentSessions 多个会话并发服务
func TestServer_ConcurrentSessions(t *testing.T) {
	srv := startServer(t, "/")

	const sessions = 4
	var wg sync.WaitGroup
	errs := make(chan error, sessions)

	for i := 0; i < sessions; i++ {
		conn := srv.dial(t, "/")
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Send(ctx, fmt.Sprintf("session %d frame %d", i, j))
				cancel()
				if err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	t.Log("✅ 会话互不阻塞")
}

// TestServer_PathPrefix 前缀之外的路径被拒绝
func TestServer_PathPrefix(t *testing.T) {
	srv := startServer(t, "/rt")

	_, err := srv.tryDial("/other")
	require.Error(t, err)

	var ce *types.ConnectError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, types.ReasonHandshake, ce.Reason)

	conn := srv.dial(t, "/rt/echo")
	require.NoError(t, conn.Send(sendCtx(t), "inside prefix"))

	t.Log("✅ 路径前缀检查正确")
}

// TestServer_UpgradeRejected 非 CONNECT 请求得到 400，不是默认的 200
func TestServer_UpgradeRejected(t *testing.T) {
	srv := startServer(t, "/")

	tr := &http3.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	defer tr.Close()

	req, err := http.NewRequestWithContext(sendCtx(t), http.MethodGet, srv.url, nil)
	require.NoError(t, err)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, srv.ActiveSessions())

	// 监听器继续服务
	conn := srv.dial(t, "/")
	require.NoError(t, conn.Send(sendCtx(t), "after rejected upgrade"))

	t.Log("✅ 升级失败回复 400")
}

// TestServer_Shutdown 关闭后会话结束
func TestServer_Shutdown(t *testing.T) {
	srv := startServer(t, "/")
	conn := srv.dial(t, "/")
	require.NoError(t, conn.Send(sendCtx(t), "before shutdown"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Zero(t, srv.ActiveSessions())

	select {
	case <-conn.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("服务器关闭后客户端会话应结束")
	}

	assert.ErrorIs(t, srv.Listen(), ErrServerClosed)
	assert.NoError(t, srv.Shutdown(ctx), "重复关闭应返回 nil")
}
