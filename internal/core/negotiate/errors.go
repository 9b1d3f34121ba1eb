package negotiate

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrFallbackSkipped ctx 已结束，未发起回退尝试
var ErrFallbackSkipped = errors.New("fallback not attempted")

// NegotiationError 两种传输都失败
//
// 同时保留两次失败；errors.Is/As 可匹配其中任意一个。
// Fallback 始终是第二次失败。
type NegotiationError struct {
	// Modern WebTransport 的失败，跳过 WebTransport 时为 nil
	Modern error

	// Fallback WebSocket 的失败
	Fallback error

	// Attempts 按发起顺序排列的尝试记录
	Attempts []Attempt
}

// Error 实现 error 接口
func (e *NegotiationError) Error() string {
	if e.Modern == nil {
		return fmt.Sprintf("negotiation failed: websocket: %v", e.Fallback)
	}
	return fmt.Sprintf("negotiation failed: webtransport: %v; websocket: %v", e.Modern, e.Fallback)
}

// Unwrap 返回全部底层错误
func (e *NegotiationError) Unwrap() []error {
	return multierr.Errors(multierr.Combine(e.Modern, e.Fallback))
}
