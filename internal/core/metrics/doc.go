// Package metrics 提供 rtlink 的监控指标
//
// 指标基于 Prometheus client_golang，注册到注入的 Registry，
// 由 HTTP 监听器的 /metrics 暴露。
//
// # 指标
//
//	rtlink_sessions_accepted_total              已接受的 WebTransport 会话
//	rtlink_sessions_closed_total{reason}        已关闭的会话（按原因）
//	rtlink_sessions_active                      当前活跃会话
//	rtlink_frames_acked_total{channel}          已回复 ACK 的帧（bi/uni/datagram）
//	rtlink_frames_rejected_total{channel}       超过 64 KiB 被拒绝的帧
//	rtlink_decode_errors_total{channel}         UTF-8 解码失败
//	rtlink_echo_messages_total                  WebSocket 回显消息
//	rtlink_negotiations_total{kind,result}      客户端协商结果
//	rtlink_bytes_in_per_second / out            最近 60 秒的平均吞吐
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.SessionAccepted()
//	m.FrameAcked(metrics.ChannelBi, 4)
//
// 所有方法对 nil *Collector 安全，客户端未启用指标时直接传 nil。
package metrics
