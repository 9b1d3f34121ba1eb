package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	// 验证默认配置有效
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, ":4433", cfg.Server.WebTransport.ListenAddr)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTP.ListenAddr)
	assert.Equal(t, "/ws", cfg.Server.HTTP.WebSocketPath)
	assert.Equal(t, 3*time.Second, cfg.Server.WebTransport.KeepAlivePeriod.Duration())
	assert.True(t, cfg.Server.TLS.UsesSelfSigned())
}

// TestClientConfig 测试客户端配置
func TestClientConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		cfg := DefaultClientConfig()
		assert.False(t, cfg.PreferWebSocket)
		assert.Equal(t, "ws", cfg.WebSocket.Scheme)
		assert.Equal(t, "/ws", cfg.WebSocket.Path)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Validate_BadPath", func(t *testing.T) {
		cfg := DefaultClientConfig()
		cfg.WebSocket.Path = "ws"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_BadScheme", func(t *testing.T) {
		cfg := DefaultClientConfig()
		cfg.WebSocket.Scheme = "http"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_BadCertHash", func(t *testing.T) {
		cfg := DefaultClientConfig()
		cfg.WebTransport.CertHashes = []string{"abcd"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_NegativeTimeout", func(t *testing.T) {
		cfg := DefaultClientConfig().WithNegotiateTimeout(-time.Second)
		assert.Error(t, cfg.Validate())
	})

	t.Run("WithPreferWebSocket", func(t *testing.T) {
		cfg := DefaultClientConfig().WithPreferWebSocket(true)
		assert.True(t, cfg.PreferWebSocket)
	})
}

func TestDecodeCertHash(t *testing.T) {
	hex := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	h, err := DecodeCertHash(hex)
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), h[1])

	// 冒号分隔形式（openssl 输出）
	colon := "00:11:22:33:44:55:66:77:88:99:AA:BB:CC:DD:EE:FF:00:11:22:33:44:55:66:77:88:99:AA:BB:CC:DD:EE:FF"
	h2, err := DecodeCertHash(colon)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	_, err = DecodeCertHash("zz")
	assert.Error(t, err)
}

// TestServerConfig 测试服务端配置
func TestServerConfig(t *testing.T) {
	t.Run("Validate_BadAddr", func(t *testing.T) {
		cfg := DefaultServerConfig().WithHTTPAddr("nope")
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_HalfCertificate", func(t *testing.T) {
		cfg := DefaultServerConfig().WithCertificate("cert.pem", "")
		assert.Error(t, cfg.Validate())
	})

	t.Run("Validate_DisabledWebTransportSkipsTLS", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.WebTransport.Enable = false
		cfg.TLS.SelfSignedHosts = nil
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Validate_KeepAliveLongerThanIdle", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.WebTransport.KeepAlivePeriod = Duration(time.Minute)
		assert.Error(t, cfg.Validate())
	})

	t.Run("WithCertificate", func(t *testing.T) {
		cfg := DefaultServerConfig().WithCertificate("cert.pem", "key.pem")
		assert.False(t, cfg.TLS.UsesSelfSigned())
		assert.NoError(t, cfg.Validate())
	})
}

func TestLogConfig(t *testing.T) {
	assert.NoError(t, DefaultLogConfig().Validate())
	assert.Error(t, LogConfig{Format: "xml"}.Validate())
	assert.Equal(t, "json", LogConfig{Format: "json"}.Options().Format)
}

// TestFromJSON 测试部分 JSON 覆盖默认值
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"server": {
			"webtransport": {"listen_addr": ":14433", "max_idle_timeout": "1m"},
			"http": {"listen_addr": "0.0.0.0:18080"}
		},
		"client": {"prefer_websocket": true, "negotiate_timeout": 2000000000}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, ":14433", cfg.Server.WebTransport.ListenAddr)
	assert.Equal(t, time.Minute, cfg.Server.WebTransport.MaxIdleTimeout.Duration())
	assert.Equal(t, "0.0.0.0:18080", cfg.Server.HTTP.ListenAddr)
	assert.Equal(t, "/ws", cfg.Server.HTTP.WebSocketPath, "未出现的字段保持默认值")
	assert.True(t, cfg.Client.PreferWebSocket)
	assert.Equal(t, 2*time.Second, cfg.Client.NegotiateTimeout.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"server": {"webtransport": {"max_idle_timeout": "soon"}}}`))
	assert.Error(t, err)
}

func TestLoadFile_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.HTTP.ListenAddr = "127.0.0.1:9090"

	data, err := cfg.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max_idle_timeout": "30s"`)

	path := filepath.Join(t.TempDir(), "rtlink.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestApplyEnv 测试环境变量覆盖
func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RTLINK_WT_ADDR":           ":5555",
		"RTLINK_HTTP_ADDR":         "127.0.0.1:6666",
		"RTLINK_SERVER_URL":        "https://example.test:5555/",
		"RTLINK_PREFER_WEBSOCKET":  "true",
		"RTLINK_NEGOTIATE_TIMEOUT": "3s",
		"RTLINK_CERT_FILE":         "  ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig()
	require.NoError(t, applyEnv(cfg, lookup))

	assert.Equal(t, ":5555", cfg.Server.WebTransport.ListenAddr)
	assert.Equal(t, "127.0.0.1:6666", cfg.Server.HTTP.ListenAddr)
	assert.Equal(t, "https://example.test:5555/", cfg.Client.ServerURL)
	assert.True(t, cfg.Client.PreferWebSocket)
	assert.Equal(t, 3*time.Second, cfg.Client.NegotiateTimeout.Duration())
	assert.Empty(t, cfg.Server.TLS.CertFile, "空白值不覆盖")
}

func TestApplyEnv_BadValue(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "RTLINK_PREFER_WEBSOCKET" {
			return "maybe", true
		}
		return "", false
	}
	assert.Error(t, applyEnv(NewConfig(), lookup))
}
