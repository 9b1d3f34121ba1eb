// Package wsecho 实现 /ws 的 WebSocket 回显处理器
//
// 每个连接独立循环：读取一帧，原样写回（相同的消息类型与字节）。
// 与 WebTransport 不同，这里不回复 ACK。
// 任意读写错误结束该连接；超过读取上限的帧会关闭连接。
package wsecho

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("server/wsecho")

// Handler WebSocket 回显处理器
//
// 已升级的连接由 Handler 跟踪，Close 时全部关闭。
type Handler struct {
	upgrader  websocket.Upgrader
	readLimit int64
	reporter  metrics.Reporter

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// New 创建回显处理器
//
// reporter 可以为 nil。
func New(cfg config.HTTPServerConfig, reporter metrics.Reporter) *Handler {
	if reporter == nil {
		reporter = (*metrics.Collector)(nil)
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
		readLimit: cfg.WebSocketReadLimit,
		reporter:  reporter,
		conns:     make(map[*websocket.Conn]struct{}),
	}
}

// checkOrigin 返回 Origin 校验函数，列表为空时全部允许
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		logger.Warn("拒绝 WebSocket Origin", "origin", origin)
		return false
	}
}

// Handle 处理 WebSocket 连接（Gin Handler）
func (h *Handler) Handle(c *gin.Context) {
	h.ServeHTTP(c.Writer, c.Request)
}

// ServeHTTP 实现 http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 升级失败时 Upgrader 已写回错误响应
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "error", err)
		return
	}
	if !h.track(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer h.untrack(conn)

	remote := conn.RemoteAddr().String()
	logger.Debug("WebSocket 连接已建立", "remote", remote)

	conn.SetReadLimit(h.readLimit)
	h.echo(conn)

	logger.Debug("WebSocket 连接已关闭", "remote", remote)
}

// track 登记连接，Handler 已关闭时返回 false
func (h *Handler) track(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *Handler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// ActiveConns 返回当前回显连接数
func (h *Handler) ActiveConns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close 关闭所有回显连接并拒绝之后的升级（幂等）
//
// 先发送 going away 关闭帧，再关闭底层连接，回显循环随读错误退出。
func (h *Handler) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = c.Close()
	}
	if len(conns) > 0 {
		logger.Info("已关闭 WebSocket 回显连接", "count", len(conns))
	}
}

// echo 回显循环
func (h *Handler) echo(conn *websocket.Conn) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WebSocket 连接异常关闭", "error", err)
			}
			return
		}
		if err := conn.WriteMessage(mt, data); err != nil {
			logger.Warn("WebSocket 回显失败", "error", err)
			return
		}
		h.reporter.EchoMessage(len(data))
	}
}
