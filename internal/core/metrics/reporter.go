package metrics

import "github.com/hudwiz/go-rtlink/pkg/types"

// Channel 服务端收到数据的通道
type Channel string

const (
	// ChannelBi 双向流
	ChannelBi Channel = "bi"
	// ChannelUni 单向流
	ChannelUni Channel = "uni"
	// ChannelDatagram 数据报
	ChannelDatagram Channel = "datagram"
	// ChannelWebSocket WebSocket 回显
	ChannelWebSocket Channel = "websocket"
)

// Reporter 服务端与客户端记录指标的接口
type Reporter interface {
	// SessionAccepted 记录一个新会话
	SessionAccepted()

	// SessionClosed 记录会话关闭及原因
	SessionClosed(reason string)

	// FrameAcked 记录一个已回复 ACK 的帧
	FrameAcked(ch Channel, size int)

	// FrameRejected 记录一个超长被拒绝的帧
	FrameRejected(ch Channel)

	// DecodeError 记录一次 UTF-8 解码失败
	DecodeError(ch Channel)

	// EchoMessage 记录一条 WebSocket 回显消息
	EchoMessage(size int)

	// Negotiated 记录一次客户端协商结果
	Negotiated(kind types.TransportKind, err error)

	// Bandwidth 返回吞吐快照
	Bandwidth() Stats
}

// 确保 Collector 实现 Reporter 接口
var _ Reporter = (*Collector)(nil)
