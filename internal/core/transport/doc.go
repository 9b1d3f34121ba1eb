// Package transport 定义实时传输的统一契约
//
// 两种传输实现：
//   - webtransport: WebTransport over HTTP/3 over QUIC（首选）
//   - websocket: WebSocket（回退）
//
// # 核心类型
//
//   - Dialer: 单次建连，失败返回 *ConnectError，从不重试
//   - Handle: 封闭的和类型，恰好持有一种具体连接，
//     所有操作通过一次 switch 分派到具体实现
//
// Handle 拥有底层连接：Close 幂等并释放 socket 与后台 goroutine，
// Done 在连接结束时关闭，不需要注册回调。
//
// # 使用示例
//
//	d, err := transport.NewWebTransportDialer(cfg.Client.WebTransport)
//	h, err := d.Connect(ctx, "https://localhost:4433/")
//	defer h.Close()
//	err = h.Send(ctx, "ping")
//
// # Fx 模块集成
//
// Module 以 name:"modern" 与 name:"fallback" 提供两个 Dialer：
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    transport.Module(),
//	    negotiate.Module(),
//	)
package transport
