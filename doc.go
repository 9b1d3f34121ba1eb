// Package rtlink 提供带回退的实时传输客户端
//
// 客户端先尝试 WebTransport（HTTP/3 over QUIC），失败后回退到 WebSocket。
// 两次尝试严格串行：WebSocket 只在 WebTransport 尝试返回之后才会发起。
// 协商结果在连接生命周期内不变。
//
// # 快速开始
//
//	client, err := rtlink.Dial(ctx, "https://example.com:4433/",
//	    rtlink.WithCertHashes(hash),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Send(ctx, "ping"); err != nil {
//	    return err
//	}
//	fmt.Println("transport:", client.Kind())
//
// # 回复约定
//
// WebTransport 上每个发送单元都会收到服务端的 "ACK"，Send 等待并校验它。
// WebSocket 回退路径上服务端原样回显，Send 不等待回复。
//
// # 错误
//
// 两种传输都失败时 Dial 返回 *NegotiationError，同时保留两次失败，
// 可用 errors.As 取出其中的 *ConnectError。Send 失败返回 *SendError，
// 不会触发重新协商。
//
// # 文件组织
//
//	rtlink/
//	├── rtlink.go     # 版本信息
//	├── client.go     # Client、Dial
//	├── options.go    # Dial 选项
//	├── errors.go     # 公共错误与类型别名
//	├── config/       # 统一配置
//	├── cmd/          # rtserver、rtclient
//	├── internal/     # 传输、协商、服务端实现
//	└── pkg/          # 公共类型与日志
package rtlink
