package webtransport

import "errors"

var (
	// ErrUnsupportedScheme 地址 scheme 无法映射到 https
	ErrUnsupportedScheme = errors.New("unsupported scheme for webtransport")

	// ErrInvalidAddress 地址无法解析
	ErrInvalidAddress = errors.New("invalid address")
)

// 流与会话错误码
const (
	// codeCancelled 本端取消（context 结束）
	codeCancelled = 0x10

	// codeClientClosed 客户端主动关闭会话
	codeClientClosed = 0
)
