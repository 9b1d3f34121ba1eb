package mux

import "fmt"

// SessionState 连接状态
type SessionState int32

const (
	// StateAwaitingSession 等待会话请求（HTTP/3 CONNECT）
	StateAwaitingSession SessionState = iota
	// StateAccepted 会话已升级
	StateAccepted
	// StateServicing 正在服务流与数据报
	StateServicing
	// StateClosed 会话已关闭
	StateClosed
)

// String 返回状态名称
func (s SessionState) String() string {
	switch s {
	case StateAwaitingSession:
		return "awaiting_session"
	case StateAccepted:
		return "accepted"
	case StateServicing:
		return "servicing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
