package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	wt "github.com/quic-go/webtransport-go"
	"golang.org/x/sync/errgroup"

	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// receiveStream 服务端读取的流
type receiveStream interface {
	io.Reader
	CancelRead(wt.StreamErrorCode)
	SetReadDeadline(time.Time) error
}

// sendStream 服务端写入的流
type sendStream interface {
	io.Writer
	io.Closer
	CancelWrite(wt.StreamErrorCode)
}

// biStream 双向流
type biStream interface {
	receiveStream
	sendStream
}

// event 泵投递给主循环的事件，主循环处理完毕后关闭 done
type event[T any] struct {
	item T
	done chan struct{}
}

// session 一个 WebTransport 会话
type session struct {
	id          string
	authority   string
	path        string
	readTimeout time.Duration

	wt       *wt.Session
	scratch  *scratch
	reporter metrics.Reporter
	log      *log.Bound

	state atomic.Int32
}

func newSession(r *http.Request, readTimeout time.Duration, reporter metrics.Reporter) *session {
	id := uuid.NewString()
	s := &session{
		id:          id,
		authority:   r.Host,
		path:        r.URL.Path,
		readTimeout: readTimeout,
		reporter:    reporter,
		log:         logger.With("session", id),
	}
	s.state.Store(int32(StateAwaitingSession))
	return s
}

// State 返回当前状态
func (s *session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *session) setState(next SessionState) {
	prev := SessionState(s.state.Swap(int32(next)))
	s.log.Debug("会话状态变更", "from", prev, "to", next)
}

// accept 绑定升级后的会话
func (s *session) accept(ws *wt.Session) {
	s.wt = ws
	s.scratch = newScratch(types.MaxFrameSize)
	s.setState(StateAccepted)
	s.reporter.SessionAccepted()
	s.log.Info("会话已接受", "authority", s.authority, "path", s.path)
}

// serve 服务会话直到出错、对端关闭或 ctx 结束
func (s *session) serve(ctx context.Context) {
	s.setState(StateServicing)

	g, gctx := errgroup.WithContext(ctx)
	bi := make(chan event[biStream])
	uni := make(chan event[receiveStream])
	dgram := make(chan event[[]byte])

	g.Go(func() error {
		return pump(gctx, func(ctx context.Context) (biStream, error) {
			return s.wt.AcceptStream(ctx)
		}, bi)
	})
	g.Go(func() error {
		return pump(gctx, func(ctx context.Context) (receiveStream, error) {
			return s.wt.AcceptUniStream(ctx)
		}, uni)
	})
	g.Go(func() error {
		return pump(gctx, s.wt.ReceiveDatagram, dgram)
	})
	g.Go(func() error {
		return s.loop(gctx, bi, uni, dgram)
	})

	s.finish(ctx, g.Wait())
}

// pump 每次接受一个事件，投递后等待主循环处理完毕
func pump[T any](ctx context.Context, accept func(context.Context) (T, error), out chan<- event[T]) error {
	for {
		item, err := accept(ctx)
		if err != nil {
			return err
		}
		ev := event[T]{item: item, done: make(chan struct{})}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-ev.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// loop 先到先处理，同一时刻只执行一个分支
func (s *session) loop(ctx context.Context, bi <-chan event[biStream], uni <-chan event[receiveStream], dgram <-chan event[[]byte]) error {
	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-bi:
			err = s.handleBi(ev.item)
			close(ev.done)
		case ev := <-uni:
			err = s.handleUni(ctx, ev.item)
			close(ev.done)
		case ev := <-dgram:
			err = s.handleDatagram(ev.item)
			close(ev.done)
		}
		if err != nil {
			return err
		}
	}
}

// handleBi 读取一帧，在同一流上回复 ACK
func (s *session) handleBi(str biStream) error {
	buf := s.scratch.acquire()
	defer s.scratch.release(buf)

	_ = str.SetReadDeadline(time.Now().Add(s.readTimeout))
	n, err := readFrame(str, buf)
	if errors.Is(err, ErrFrameTooLarge) {
		str.CancelRead(ErrorCodeFrameTooLarge)
		str.CancelWrite(ErrorCodeFrameTooLarge)
		s.reject(metrics.ChannelBi)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bi stream: %w", err)
	}
	if n == 0 {
		// 空流不是一帧：只结束发送端，不回复
		s.log.Debug("双向流为空，不回复")
		return str.Close()
	}

	msg, err := decodeFrame(metrics.ChannelBi, buf[:n])
	if err != nil {
		s.reporter.DecodeError(metrics.ChannelBi)
		return err
	}
	s.log.Debug("收到双向流消息", "size", n, "msg", log.Truncate(msg, 64))

	if _, err := str.Write(AckFrame); err != nil {
		return fmt.Errorf("write ack: %w", err)
	}
	if err := str.Close(); err != nil {
		return fmt.Errorf("close bi stream: %w", err)
	}
	s.reporter.FrameAcked(metrics.ChannelBi, n)
	return nil
}

// handleUni 读取一帧，新开服务端单向流回复 ACK
func (s *session) handleUni(ctx context.Context, str receiveStream) error {
	buf := s.scratch.acquire()
	defer s.scratch.release(buf)

	_ = str.SetReadDeadline(time.Now().Add(s.readTimeout))
	n, err := readFrame(str, buf)
	if errors.Is(err, ErrFrameTooLarge) {
		str.CancelRead(ErrorCodeFrameTooLarge)
		s.reject(metrics.ChannelUni)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read uni stream: %w", err)
	}
	if n == 0 {
		s.log.Debug("单向流为空，不回复")
		return nil
	}

	msg, err := decodeFrame(metrics.ChannelUni, buf[:n])
	if err != nil {
		s.reporter.DecodeError(metrics.ChannelUni)
		return err
	}
	s.log.Debug("收到单向流消息", "size", n, "msg", log.Truncate(msg, 64))

	reply, err := s.wt.OpenUniStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("open uni stream: %w", err)
	}
	if _, err := reply.Write(AckFrame); err != nil {
		return fmt.Errorf("write ack: %w", err)
	}
	if err := reply.Close(); err != nil {
		return fmt.Errorf("close uni stream: %w", err)
	}
	s.reporter.FrameAcked(metrics.ChannelUni, n)
	return nil
}

// handleDatagram 回复一个 ACK 数据报
func (s *session) handleDatagram(data []byte) error {
	buf := s.scratch.acquire()
	defer s.scratch.release(buf)

	n := copy(buf, data)
	msg, err := decodeFrame(metrics.ChannelDatagram, buf[:n])
	if err != nil {
		s.reporter.DecodeError(metrics.ChannelDatagram)
		return err
	}
	s.log.Debug("收到数据报", "size", n, "msg", log.Truncate(msg, 64))

	if err := s.wt.SendDatagram(AckFrame); err != nil {
		return fmt.Errorf("send datagram: %w", err)
	}
	s.reporter.FrameAcked(metrics.ChannelDatagram, n)
	return nil
}

func (s *session) reject(ch metrics.Channel) {
	s.reporter.FrameRejected(ch)
	s.log.Warn("拒绝超长帧", "channel", ch, "limit", types.MaxFrameSize)
}

// finish 关闭会话并记录原因
func (s *session) finish(ctx context.Context, err error) {
	var (
		reason string
		code   wt.SessionErrorCode
		msg    string
	)
	switch {
	case errors.Is(err, ErrInvalidUTF8):
		reason, code, msg = "invalid_utf8", SessionCodeInvalidUTF8, "invalid utf-8"
	case s.wt.Context().Err() != nil:
		reason, code = "peer", SessionCodeNormal
	case ctx.Err() != nil:
		reason, code, msg = "shutdown", SessionCodeShutdown, "server shutting down"
	default:
		reason, code, msg = "io", SessionCodeIOError, "stream error"
	}

	_ = s.wt.CloseWithError(code, msg)
	s.setState(StateClosed)
	s.reporter.SessionClosed(reason)

	if reason == "peer" || reason == "shutdown" {
		s.log.Info("会话已关闭", "reason", reason)
	} else {
		s.log.Warn("会话异常关闭", "reason", reason, "error", err)
	}
}
