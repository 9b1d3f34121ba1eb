// Package webtransport 实现 WebTransport 客户端传输
//
// WebTransport 运行在 HTTP/3 over QUIC 之上，是协商的首选传输。
//
// # 地址映射
//
//	https://host:4433/path        原样使用
//	wt://host:4433/path           改写为 https://
//	webtransport://host:4433/path 改写为 https://
//	其他 scheme                   ConnectError{Reason: ReasonUnsupported}
//
// 端口与路径可由配置覆盖。
//
// # 通道
//
//   - Send: 打开双向流，写入消息，关闭写端，等待同一流上的 ACK
//   - SendUni: 打开单向流，写入消息，等待服务端新开的单向流回复 ACK
//   - SendDatagram / ReceiveDatagram: 不可靠数据报
//
// # 证书校验
//
// 默认使用系统根证书。开发环境可选择：
//   - InsecureSkipVerify: 跳过校验
//   - CAFile: 指定根证书
//   - CertHashes: 固定叶子证书 SHA-256（与浏览器 serverCertificateHashes 语义一致）
package webtransport
