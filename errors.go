package rtlink

import (
	"errors"

	"github.com/hudwiz/go-rtlink/internal/core/negotiate"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

// 公共类型别名
type (
	// TransportKind 协商得到的传输类型
	TransportKind = types.TransportKind

	// ConnectError 单次建连失败
	ConnectError = types.ConnectError

	// SendError 单次发送失败
	SendError = types.SendError

	// NegotiationError 两种传输都失败
	NegotiationError = negotiate.NegotiationError

	// Attempt 一次建连尝试的记录
	Attempt = negotiate.Attempt
)

// 传输类型
const (
	KindUnknown      = types.KindUnknown
	KindWebTransport = types.KindWebTransport
	KindWebSocket    = types.KindWebSocket
)

// 公共错误定义
var (
	// ErrClientClosed 客户端已关闭
	ErrClientClosed = types.ErrHandleClosed

	// ErrUnexpectedReply 服务端回复不是 ACK
	ErrUnexpectedReply = types.ErrUnexpectedReply

	// ErrFallbackSkipped ctx 已结束，未发起 WebSocket 尝试
	ErrFallbackSkipped = negotiate.ErrFallbackSkipped

	// ErrEmptyURL 服务地址为空
	ErrEmptyURL = errors.New("server url is empty")
)
