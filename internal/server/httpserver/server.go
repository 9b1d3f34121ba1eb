// Package httpserver 实现服务端 HTTP 监听器
//
// 路由：
//   - GET <websocket_path>: WebSocket 回显（默认 /ws）
//   - GET /metrics: Prometheus 指标（可关闭）
//   - GET /healthz: 存活检查
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/server/wsecho"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("server/http")

// Server HTTP 监听器
type Server struct {
	cfg     config.HTTPServerConfig
	router  *gin.Engine
	echo    *wsecho.Handler
	started time.Time

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// New 创建 HTTP 监听器
//
// gatherer 为 nil 或配置关闭时不注册 /metrics。
func New(cfg config.HTTPServerConfig, echo *wsecho.Handler, gatherer prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:     cfg,
		router:  router,
		echo:    echo,
		started: time.Now(),
	}

	router.GET(cfg.WebSocketPath, echo.Handle)
	router.GET("/healthz", s.healthz)
	if cfg.EnableMetrics && gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Handler 返回路由（测试用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 绑定 TCP 端口并在后台提供服务
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration(),
	}

	srv := s.srv
	go func() {
		// 正常关闭时返回 http.ErrServerClosed
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP 服务退出", "error", err)
		}
	}()

	logger.Info("HTTP 监听器已启动", "addr", ln.Addr().String(), "websocket", s.cfg.WebSocketPath)
	return nil
}

// Addr 返回实际监听地址，未启动时为 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop 优雅关闭
//
// WebSocket 连接已被劫持，Shutdown 不跟踪它们，由回显处理器单独关闭。
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	s.echo.Close()
	if err != nil {
		logger.Error("HTTP 监听器关闭出错", "error", err)
		return err
	}
	logger.Info("HTTP 监听器已关闭")
	return nil
}

// healthResponse /healthz 响应
type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Truncate(time.Second).String(),
	})
}

// requestLogger 记录请求，附加 X-Request-ID
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("HTTP 请求", args...)
		case c.Writer.Status() >= 400:
			logger.Warn("HTTP 请求", args...)
		default:
			logger.Debug("HTTP 请求", args...)
		}
	}
}
