package webtransport

import (
	"crypto/tls"
	"fmt"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/core/certs"
)

// clientTLSConfig 根据配置生成客户端 TLS 配置
//
// 优先级：CertHashes > CAFile > InsecureSkipVerify > 系统根证书。
// 指纹固定时跳过 CA 校验，安全性由 VerifyPeerCertificate 保证。
func clientTLSConfig(cfg config.WebTransportClientConfig) (*tls.Config, error) {
	conf := &tls.Config{
		MinVersion: tls.VersionTLS13,
	}

	if len(cfg.CertHashes) > 0 {
		pins := make([][32]byte, 0, len(cfg.CertHashes))
		for _, h := range cfg.CertHashes {
			pin, err := config.DecodeCertHash(h)
			if err != nil {
				return nil, err
			}
			pins = append(pins, pin)
		}
		conf.InsecureSkipVerify = true
		conf.VerifyPeerCertificate = certs.VerifyPinned(pins)
		return conf, nil
	}

	if cfg.CAFile != "" {
		pool, err := certs.LoadCertPool(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load CA: %w", err)
		}
		conf.RootCAs = pool
		return conf, nil
	}

	conf.InsecureSkipVerify = cfg.InsecureSkipVerify
	return conf, nil
}
