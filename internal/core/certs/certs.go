package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/quic-go/quic-go/http3"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("core/certs")

// Identity 服务端 TLS 身份
type Identity struct {
	// Certificate 用于 tls.Config 的证书链与私钥
	Certificate tls.Certificate

	// Leaf 解析后的叶子证书
	Leaf *x509.Certificate

	// Hash 叶子证书 DER 的 SHA-256
	Hash [32]byte

	// SelfSigned 是否为启动时生成的证书
	SelfSigned bool
}

// FromConfig 按配置加载或生成 TLS 身份
func FromConfig(cfg config.TLSConfig) (*Identity, error) {
	if cfg.UsesSelfSigned() {
		return GenerateSelfSigned(cfg.SelfSignedHosts, cfg.SelfSignedValidity.Duration())
	}
	return Load(cfg.CertFile, cfg.KeyFile)
}

// GenerateSelfSigned 生成自签名 ECDSA P-256 证书
//
// hosts 中的 IP 写入 IPAddresses，其余写入 DNSNames。
func GenerateSelfSigned(hosts []string, validity time.Duration) (*Identity, error) {
	if len(hosts) == 0 {
		return nil, ErrNoHosts
	}
	if validity <= 0 {
		return nil, fmt.Errorf("invalid validity %s", validity)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成私钥失败: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("生成序列号失败: %w", err)
	}

	// 起始时间回拨一分钟，容忍时钟偏差；总跨度仍不超过 validity
	notBefore := time.Now().Add(-time.Minute)
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"rtlink"},
			CommonName:   hosts[0],
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("创建证书失败: %w", err)
	}
	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("解析证书失败: %w", err)
	}

	id := &Identity{
		Certificate: tls.Certificate{
			Certificate: [][]byte{certDER},
			PrivateKey:  key,
			Leaf:        leaf,
		},
		Leaf:       leaf,
		Hash:       sha256.Sum256(certDER),
		SelfSigned: true,
	}
	logger.Debug("已生成自签名证书", "hosts", hosts, "notAfter", leaf.NotAfter, "sha256", id.HashHex())
	return id, nil
}

// Load 从 PEM 文件加载证书与私钥
func Load(certFile, keyFile string) (*Identity, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("加载证书失败: %w", err)
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("加载证书失败: %s 中没有证书", certFile)
	}
	leaf := cert.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
			return nil, fmt.Errorf("解析证书失败: %w", err)
		}
		cert.Leaf = leaf
	}
	return &Identity{
		Certificate: cert,
		Leaf:        leaf,
		Hash:        sha256.Sum256(cert.Certificate[0]),
	}, nil
}

// HashHex 返回证书指纹的十六进制表示
func (id *Identity) HashHex() string {
	return hex.EncodeToString(id.Hash[:])
}

// ServerTLSConfig 返回 HTTP/3 监听器使用的 TLS 配置
func (id *Identity) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.Certificate},
		NextProtos:   []string{http3.NextProtoH3},
		MinVersion:   tls.VersionTLS13,
	}
}

// CertPool 返回只包含该证书的根证书池（测试与本地客户端使用）
func (id *Identity) CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(id.Leaf)
	return pool
}

// ============================================================================
//                              客户端校验
// ============================================================================

// VerifyPinned 返回按 SHA-256 指纹校验叶子证书的回调
//
// 与 tls.Config.InsecureSkipVerify 配合使用：跳过 CA 校验，
// 安全性由指纹比对保证，同时检查证书有效期。
func VerifyPinned(pins [][32]byte) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrNoCertificate
		}
		sum := sha256.Sum256(rawCerts[0])
		for _, pin := range pins {
			if pin == sum {
				return checkValidity(rawCerts[0])
			}
		}
		return fmt.Errorf("%w: got %s", ErrHashMismatch, hex.EncodeToString(sum[:]))
	}
}

func checkValidity(der []byte) error {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return fmt.Errorf("parse peer certificate: %w", err)
	}
	now := time.Now()
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate not yet valid (notBefore: %v)", cert.NotBefore)
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired (notAfter: %v)", cert.NotAfter)
	}
	return nil
}

// LoadCertPool 从 PEM 文件加载根证书池
func LoadCertPool(caFile string) (*x509.CertPool, error) {
	data, err := os.ReadFile(caFile) //nolint:gosec // G304: 用户指定的 CA 文件
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%s: %w", caFile, ErrNoPEMCertificates)
	}
	return pool, nil
}
