package mux

import (
	"errors"

	"github.com/hudwiz/go-rtlink/pkg/types"
)

// AckFrame 对每个接收单元的回复
var AckFrame = []byte(types.AckMessage)

var (
	// ErrInvalidUTF8 帧不是合法 UTF-8，导致会话关闭
	ErrInvalidUTF8 = errors.New("frame is not valid UTF-8")

	// ErrFrameTooLarge 流上的帧超过 64 KiB，仅拒绝该流
	ErrFrameTooLarge = errors.New("frame exceeds 64 KiB")

	// ErrServerClosed 服务器已关闭
	ErrServerClosed = errors.New("server closed")
)

// 流错误码（RESET_STREAM / STOP_SENDING）
const (
	// ErrorCodeFrameTooLarge 帧超过 64 KiB
	ErrorCodeFrameTooLarge = 0x40
)

// 会话错误码（CloseWithError）
const (
	// SessionCodeNormal 正常关闭
	SessionCodeNormal = 0x0
	// SessionCodeInvalidUTF8 收到非 UTF-8 帧
	SessionCodeInvalidUTF8 = 0x1
	// SessionCodeIOError 流或数据报 I/O 错误
	SessionCodeIOError = 0x2
	// SessionCodeShutdown 服务器关闭
	SessionCodeShutdown = 0x3
)
