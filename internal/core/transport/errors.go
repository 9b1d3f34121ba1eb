package transport

import "github.com/hudwiz/go-rtlink/pkg/types"

// 错误类型定义在 pkg/types，具体传输实现与本包共享
type (
	// ConnectError 单次建连失败
	ConnectError = types.ConnectError

	// SendError 单次发送失败
	SendError = types.SendError

	// Reason 建连失败分类
	Reason = types.ConnectReason
)

// 建连失败分类
const (
	ReasonIO          = types.ReasonIO
	ReasonUnsupported = types.ReasonUnsupported
	ReasonHandshake   = types.ReasonHandshake
)

var (
	// ErrHandleClosed 连接句柄已关闭
	ErrHandleClosed = types.ErrHandleClosed

	// ErrUnexpectedReply 服务端回复不是 ACK
	ErrUnexpectedReply = types.ErrUnexpectedReply
)
