package certs

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// WritePEM 将证书与私钥写入 PEM 文件
//
// 用于把自签名证书导出给浏览器或其他客户端。
func (id *Identity) WritePEM(certFile, keyFile string) error {
	var certPEM []byte
	for _, der := range id.Certificate.Certificate {
		certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(id.Certificate.PrivateKey)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil { //nolint:gosec // 证书是公开数据
		return fmt.Errorf("write certificate: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	return nil
}
