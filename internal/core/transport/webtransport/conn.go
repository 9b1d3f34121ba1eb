package webtransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	wt "github.com/quic-go/webtransport-go"

	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

var ackFrame = []byte(types.AckMessage)

// Conn WebTransport 客户端连接
//
// 拥有会话及其底层 UDP socket。Close 幂等，Done 在会话结束时关闭。
type Conn struct {
	sess         *wt.Session
	dialer       *wt.Dialer
	ep           *endpoint
	replyTimeout time.Duration

	// uniMu 保证单向流请求与服务端回复一一对应
	uniMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
	doneOnce  sync.Once
	done      chan struct{}
}

func newConn(sess *wt.Session, dialer *wt.Dialer, ep *endpoint, replyTimeout time.Duration) *Conn {
	c := &Conn{
		sess:         sess,
		dialer:       dialer,
		ep:           ep,
		replyTimeout: replyTimeout,
		done:         make(chan struct{}),
	}
	go func() {
		<-sess.Context().Done()
		c.markDone()
	}()
	return c
}

func (c *Conn) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Done 返回会话结束时关闭的 channel
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Send 在新的双向流上发送一帧并等待 ACK
func (c *Conn) Send(ctx context.Context, message string) error {
	if c.closed() {
		return types.ErrHandleClosed
	}

	str, err := c.sess.OpenStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		str.CancelRead(codeCancelled)
		str.CancelWrite(codeCancelled)
	})
	defer stop()

	if _, err := io.WriteString(str, message); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	// 关闭写端，服务端以 FIN 作为帧结束
	if err := str.Close(); err != nil {
		return fmt.Errorf("close send side: %w", err)
	}

	_ = str.SetReadDeadline(time.Now().Add(c.replyTimeout))
	return readAck(ctx, str)
}

// SendUni 在新的单向流上发送一帧，并等待服务端新开的单向流回复 ACK
func (c *Conn) SendUni(ctx context.Context, message string) error {
	if c.closed() {
		return types.ErrHandleClosed
	}

	c.uniMu.Lock()
	defer c.uniMu.Unlock()

	str, err := c.sess.OpenUniStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("open uni stream: %w", err)
	}
	if _, err := io.WriteString(str, message); err != nil {
		str.CancelWrite(codeCancelled)
		return fmt.Errorf("write frame: %w", err)
	}
	if err := str.Close(); err != nil {
		return fmt.Errorf("close uni stream: %w", err)
	}

	rctx, cancel := context.WithTimeout(ctx, c.replyTimeout)
	defer cancel()
	reply, err := c.sess.AcceptUniStream(rctx)
	if err != nil {
		return fmt.Errorf("accept reply stream: %w", err)
	}
	stop := context.AfterFunc(rctx, func() { reply.CancelRead(codeCancelled) })
	defer stop()
	return readAck(rctx, reply)
}

// SendDatagram 发送一个数据报，不等待回复
func (c *Conn) SendDatagram(message []byte) error {
	if c.closed() {
		return types.ErrHandleClosed
	}
	return c.sess.SendDatagram(message)
}

// ReceiveDatagram 接收下一个数据报
func (c *Conn) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	return c.sess.ReceiveDatagram(ctx)
}

// Close 关闭会话并释放 UDP socket（幂等）
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.sess.CloseWithError(codeClientClosed, "client closed")
		_ = c.dialer.Close()
		c.ep.close()
		c.markDone()
		logger.Debug("WebTransport 会话已关闭")
	})
	return c.closeErr
}

// readAck 读取回复并要求其恰好为 ACK
func readAck(ctx context.Context, r io.Reader) error {
	reply, err := io.ReadAll(io.LimitReader(r, int64(len(ackFrame))+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("read reply: %w", ctxErr)
		}
		return fmt.Errorf("read reply: %w", err)
	}
	if !bytes.Equal(reply, ackFrame) {
		return fmt.Errorf("%w: %q", types.ErrUnexpectedReply, log.Truncate(string(reply), 16))
	}
	return nil
}
