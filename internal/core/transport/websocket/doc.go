// Package websocket 实现 WebSocket 客户端传输
//
// WebSocket 是协商的回退传输，在 WebTransport 不可用时使用
// （UDP 被封锁、浏览器或代理不支持 HTTP/3 等）。
//
// # 地址映射
//
// ws:// 与 wss:// 地址视为显式的 WebSocket 端点，原样使用。
// 其他地址按以下规则改写：
//   - 配置指定 Scheme 时使用配置值
//   - https 改写为 wss
//   - 其余（http、wt、未知 scheme）改写为 ws
//
// 主机与查询参数保留，端口与路径可由配置覆盖（默认 8080 与 /ws）。
//
// # 读写模型
//
// Send 在写锁下写入一个文本帧。读端由后台 goroutine 独占
// （处理 ping/close 控制帧），收到的数据帧投递到 Messages()，
// 队列满时丢弃最旧的消息。对端关闭或读错误时 Done() 关闭。
package websocket
