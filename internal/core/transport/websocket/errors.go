package websocket

import "errors"

var (
	// ErrInvalidAddress 地址无法解析
	ErrInvalidAddress = errors.New("invalid address")
)
