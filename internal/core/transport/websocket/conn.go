package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hudwiz/go-rtlink/pkg/types"
)

// closeGracePeriod 发送 close 帧的写超时
const closeGracePeriod = time.Second

// Conn WebSocket 客户端连接
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	messages chan []byte

	mu      sync.Mutex
	readErr error

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func newConn(ws *websocket.Conn, buffer int) *Conn {
	c := &Conn{
		ws:       ws,
		messages: make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop 读取循环，连接结束时关闭 done 与 messages
func (c *Conn) readLoop() {
	defer func() {
		close(c.done)
		close(c.messages)
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket 对端已关闭", "error", err)
			} else {
				logger.Debug("WebSocket 读取结束", "error", err)
			}
			return
		}
		c.deliver(data)
	}
}

// deliver 投递一条消息，队列满时丢弃最旧的消息
func (c *Conn) deliver(data []byte) {
	for {
		select {
		case c.messages <- data:
			return
		default:
		}
		select {
		case old := <-c.messages:
			logger.Debug("接收队列已满，丢弃最旧消息", "size", len(old))
		default:
		}
	}
}

// Messages 返回接收到的数据帧，连接结束后关闭
func (c *Conn) Messages() <-chan []byte {
	return c.messages
}

// Done 返回连接结束时关闭的 channel
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err 返回导致读取结束的错误，连接仍存活时为 nil
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Send 发送一个文本帧
func (c *Conn) Send(ctx context.Context, message string) error {
	select {
	case <-c.done:
		return types.ErrHandleClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close 发送 close 帧并关闭连接（幂等），等待读取 goroutine 退出
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		c.closeErr = c.ws.Close()
		<-c.done
	})
	return c.closeErr
}
