package mux

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	wt "github.com/quic-go/webtransport-go"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("server/mux")

// Server WebTransport 监听器
type Server struct {
	cfg      config.WebTransportServerConfig
	id       *certs.Identity
	reporter metrics.Reporter
	wt       *wt.Server

	// ctx 在 Shutdown 时取消，结束所有会话
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	conn     net.PacketConn
	sessions map[*session]struct{}
	wg       sync.WaitGroup
	closed   bool
}

// New 创建 WebTransport 监听器
//
// reporter 可以为 nil。
func New(cfg config.WebTransportServerConfig, id *certs.Identity, reporter metrics.Reporter) *Server {
	if reporter == nil {
		reporter = (*metrics.Collector)(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		id:       id,
		reporter: reporter,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*session]struct{}),
	}

	s.wt = &wt.Server{
		H3: http3.Server{
			TLSConfig: id.ServerTLSConfig(),
			QUICConfig: &quic.Config{
				MaxIdleTimeout: cfg.MaxIdleTimeout.Duration(),
				// 3s KeepAlive 保持 NAT 映射并及时发现断开
				KeepAlivePeriod:       cfg.KeepAlivePeriod.Duration(),
				MaxIncomingStreams:    cfg.MaxIncomingStreams,
				MaxIncomingUniStreams: cfg.MaxIncomingUniStreams,
				EnableDatagrams:       true,
			},
			EnableDatagrams: true,
			Handler:         http.HandlerFunc(s.handleSession),
		},
		CheckOrigin: checkOrigin(cfg.AllowedOrigins),
	}
	return s
}

// checkOrigin 返回 Origin 校验函数，列表为空时全部允许
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Listen 绑定 UDP 端口
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	if s.conn != nil {
		return nil
	}

	udpAddr, err := net.ResolveUDPAddr("udp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.cfg.ListenAddr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}
	s.conn = conn
	logger.Info("WebTransport 监听器已绑定", "addr", conn.LocalAddr().String(), "sha256", s.id.HashHex())
	return nil
}

// Serve 在已绑定的端口上运行接受循环，直到 Shutdown
func (s *Server) Serve() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("serve called before listen")
	}

	err := s.wt.Serve(conn)
	if s.ctx.Err() != nil {
		return ErrServerClosed
	}
	return err
}

// Start 绑定端口并在后台运行接受循环
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, ErrServerClosed) {
			logger.Error("WebTransport 接受循环退出", "error", err)
		}
	}()
	return nil
}

// Addr 返回实际监听地址，未绑定时为 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Shutdown 关闭监听器与所有会话，等待会话 goroutine 退出或 ctx 结束
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	s.cancel()
	err := s.wt.Close()
	if conn != nil {
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("WebTransport 监听器已关闭")
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// ActiveSessions 返回正在服务的会话数
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// handleSession 处理一个会话请求，阻塞直到会话结束
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := newSession(r, s.cfg.MaxIdleTimeout.Duration(), s.reporter)
	sess.log.Debug("收到会话请求", "authority", r.Host, "path", r.URL.Path)

	if !strings.HasPrefix(r.URL.Path, s.cfg.PathPrefix) {
		sess.log.Warn("路径不匹配，拒绝会话", "path", r.URL.Path, "prefix", s.cfg.PathPrefix)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !s.track(sess) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	defer s.untrack(sess)

	ws, err := s.wt.Upgrade(w, r)
	if err != nil {
		// Upgrade 出错时尚未写响应；不写则 http3 默认回复 200
		sess.log.Warn("会话升级失败", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess.accept(ws)
	sess.serve(s.ctx)
}

func (s *Server) track(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.wg.Done()
}
