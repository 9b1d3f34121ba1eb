package certs

import (
	"go.uber.org/fx"

	"github.com/hudwiz/go-rtlink/config"
)

// NewFromConfig 从统一配置加载服务端 TLS 身份
func NewFromConfig(cfg *config.Config) (*Identity, error) {
	id, err := FromConfig(cfg.Server.TLS)
	if err != nil {
		return nil, err
	}
	if id.SelfSigned {
		logger.Warn("使用自签名证书，客户端需按指纹校验", "sha256", id.HashHex())
	}
	return id, nil
}

// Module 返回证书 Fx 模块
func Module() fx.Option {
	return fx.Module("certs",
		fx.Provide(NewFromConfig),
	)
}
