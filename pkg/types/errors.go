// Package types 定义 rtlink 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              连接句柄错误
// ============================================================================

var (
	// ErrHandleClosed 连接句柄已关闭
	ErrHandleClosed = errors.New("connection handle closed")

	// ErrUnexpectedReply 服务端回复不是 ACK
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// ============================================================================
//                              ConnectError - 建连失败
// ============================================================================

// ConnectReason 建连失败的分类
type ConnectReason int

const (
	// ReasonIO 网络错误（DNS、socket、超时）
	ReasonIO ConnectReason = iota
	// ReasonUnsupported 地址 scheme 或能力不受支持
	ReasonUnsupported
	// ReasonHandshake 握手被拒绝（HTTP 状态码、TLS 校验失败）
	ReasonHandshake
)

// String 返回失败分类的字符串表示
func (r ConnectReason) String() string {
	switch r {
	case ReasonIO:
		return "io"
	case ReasonUnsupported:
		return "unsupported"
	case ReasonHandshake:
		return "handshake"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ConnectError 单次建连失败
//
// 对协商管理器来说是非致命错误：WebTransport 的 ConnectError 触发回退。
type ConnectError struct {
	Kind    TransportKind
	Address string
	Reason  ConnectReason
	Err     error
}

// Error 实现 error 接口
func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s connect %s: %s: %v", e.Kind, e.Address, e.Reason, e.Err)
}

// Unwrap 返回底层错误
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// NewConnectError 创建建连错误
func NewConnectError(kind TransportKind, address string, reason ConnectReason, err error) *ConnectError {
	return &ConnectError{Kind: kind, Address: address, Reason: reason, Err: err}
}

// ============================================================================
//                              SendError - 发送失败
// ============================================================================

// SendError 单次发送失败
//
// 对该次发送是致命的，不会触发重新协商。
type SendError struct {
	Kind TransportKind
	Err  error
}

// Error 实现 error 接口
func (e *SendError) Error() string {
	return fmt.Sprintf("%s send: %v", e.Kind, e.Err)
}

// Unwrap 返回底层错误
func (e *SendError) Unwrap() error {
	return e.Err
}
