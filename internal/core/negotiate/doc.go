// Package negotiate 实现实时传输协商
//
// 协商严格顺序执行：
//
//	1. WebTransport.Connect
//	2. 成功 → (handle, KindWebTransport)
//	3. 失败 → 记录 warn，WebSocket.Connect
//	4. 成功 → (handle, KindWebSocket)
//	5. 都失败 → *NegotiationError，不返回 handle
//
// WebSocket 尝试绝不会在 WebTransport 尝试返回之前开始。每次尝试的
// 起止时间通过注入的 clock.Clock 记录在 Attempt 中，可由
// LastAttempts 或 NegotiationError.Attempts 观察。
//
// ctx 已结束时不再发起回退尝试。协商本身不设超时，
// 各拨号器受自身握手超时限制，外部超时由调用方通过 ctx 提供。
package negotiate
