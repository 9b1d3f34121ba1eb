// Package certs 管理 WebTransport 监听器的 TLS 身份
//
// 两种来源：
//   - 配置的 PEM 证书与私钥（生产环境）
//   - 启动时生成的自签名 ECDSA P-256 证书（开发环境）
//
// 自签名证书有效期默认 14 天，浏览器的 serverCertificateHashes
// 只接受不超过 14 天的证书。证书指纹（SHA-256）在启动时打印，
// 客户端通过 -cert-hash 固定该指纹。
//
// # 使用示例
//
//	id, err := certs.GenerateSelfSigned([]string{"localhost"}, 14*24*time.Hour)
//	tlsConf := id.ServerTLSConfig()
//	fmt.Println(id.HashHex())
//
//	// 客户端按指纹校验
//	conf := &tls.Config{
//	    InsecureSkipVerify:    true,
//	    VerifyPeerCertificate: certs.VerifyPinned([][32]byte{id.Hash}),
//	}
package certs
