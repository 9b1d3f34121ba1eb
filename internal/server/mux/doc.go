// Package mux 实现 WebTransport 服务端连接多路复用
//
// 每个连接的状态机：
//
//	AwaitingSession → Accepted → Servicing → Closed
//
// HTTP/3 服务器是接受循环，每个会话请求在独立的 goroutine 中处理，
// 不会阻塞其他会话。会话进入 Servicing 后由 errgroup 管理三个泵：
// 接受双向流、接受单向流、接收数据报。每个泵一次只投递一个事件，
// 并等待主循环处理完毕后再接受下一个；主循环 select 先到先处理，
// 同一时刻只执行一个分支。
//
// # 回复约定
//
//   - 双向流：读取一帧（≤ 64 KiB），同一流上回复 ACK 并关闭
//   - 单向流：读取一帧，新开一个服务端单向流回复 ACK
//   - 数据报：回复一个 ACK 数据报，不重试
//
// 帧必须是合法 UTF-8，否则关闭该会话（其他会话不受影响）。
// 流上超过 64 KiB 的帧被拒绝：取消读写并以 ErrorCodeFrameTooLarge 重置，
// 不回复 ACK，会话继续服务。
//
// # 暂存缓冲区
//
// 每个会话持有一个 64 KiB 缓冲区，放在容量为 1 的 channel 中，
// 分支开始时取出、结束时归还，因此不可能被两个读取同时使用。
package mux
