package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/internal/server/wsecho"
)

func newTestServer(t *testing.T, cfg config.HTTPServerConfig) *Server {
	t.Helper()
	reg := metrics.NewRegistry()
	reporter := metrics.New(reg)
	return New(cfg, wsecho.New(cfg, reporter), reg)
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig().HTTP)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)

	t.Log("✅ /healthz 正常")
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig().HTTP)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rtlink_sessions_active")
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := config.DefaultServerConfig().HTTP
	cfg.EnableMetrics = false
	s := newTestServer(t, cfg)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestServer_WebSocketEcho 通过真实监听器回显
func TestServer_WebSocketEcho(t *testing.T) {
	cfg := config.DefaultServerConfig().HTTP
	cfg.ListenAddr = "127.0.0.1:0"
	s := newTestServer(t, cfg)

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	url := fmt.Sprintf("ws://%s%s", s.Addr().String(), cfg.WebSocketPath)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	t.Log("✅ /ws 回显正常")
}

// TestServer_StopClosesWebSocket Stop 结束被劫持的回显连接
func TestServer_StopClosesWebSocket(t *testing.T) {
	cfg := config.DefaultServerConfig().HTTP
	cfg.ListenAddr = "127.0.0.1:0"
	s := newTestServer(t, cfg)
	require.NoError(t, s.Start())

	url := fmt.Sprintf("ws://%s%s", s.Addr().String(), cfg.WebSocketPath)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// 服务端主动关闭，读取在超时之前失败
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "应收到 going away: %v", err)

	t.Log("✅ Stop 关闭 WebSocket 连接")
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.HTTP.ListenAddr = "127.0.0.1:0"

	var s *Server
	app := fxtest.New(t,
		fx.Supply(cfg),
		metrics.Module(),
		Module(),
		fx.Populate(&s),
	)
	app.RequireStart()

	require.NotNil(t, s.Addr())
	rsp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(rsp.Body)
	rsp.Body.Close()
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"status":"ok"`))

	app.RequireStop()
}
