package metrics

// Stats 吞吐统计快照
//
// TotalIn 和 TotalOut 记录最近 60 秒接收/发送的字节数。
// RateIn 和 RateOut 记录每秒接收/发送字节数。
type Stats struct {
	TotalIn  int64   // 入站字节
	TotalOut int64   // 出站字节
	RateIn   float64 // 入站速率（字节/秒）
	RateOut  float64 // 出站速率（字节/秒）
}
