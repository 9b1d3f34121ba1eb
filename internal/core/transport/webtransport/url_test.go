package webtransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		address string
		port    int
		path    string
		want    string
		wantErr error
	}{
		{"https 原样使用", "https://example.com:4433/chat", 0, "", "https://example.com:4433/chat", nil},
		{"wt 改写为 https", "wt://example.com:4433/chat", 0, "", "https://example.com:4433/chat", nil},
		{"webtransport 改写为 https", "webtransport://127.0.0.1:4433", 0, "", "https://127.0.0.1:4433/", nil},
		{"端口覆盖", "https://example.com/", 9443, "", "https://example.com:9443/", nil},
		{"IPv6 端口覆盖", "https://[::1]:1/", 4433, "", "https://[::1]:4433/", nil},
		{"路径覆盖保留查询", "https://example.com/a?x=1", 0, "/rt", "https://example.com/rt?x=1", nil},
		{"未知 scheme", "bad-modern://127.0.0.1:8080/ws", 0, "", "", ErrUnsupportedScheme},
		{"ws 不支持", "ws://127.0.0.1:8080/ws", 0, "", "", ErrUnsupportedScheme},
		{"缺少主机", "https:///path", 0, "", "", ErrInvalidAddress},
		{"无法解析", "https://%zz", 0, "", "", ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(tt.address, tt.port, tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
