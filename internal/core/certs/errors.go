package certs

import "errors"

var (
	// ErrNoCertificate 对端未提供证书
	ErrNoCertificate = errors.New("no peer certificate")

	// ErrHashMismatch 证书指纹不在固定列表中
	ErrHashMismatch = errors.New("certificate hash does not match any pinned hash")

	// ErrNoHosts 自签名证书缺少主机名
	ErrNoHosts = errors.New("self-signed certificate needs at least one host")

	// ErrNoPEMCertificates CA 文件中没有证书
	ErrNoPEMCertificates = errors.New("no PEM certificates found")
)
