package websocket

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ResolveURL 将协商地址映射为 WebSocket URL
//
// scheme 非空时强制使用，port 非 0 时覆盖端口，path 非空时覆盖路径。
// 地址本身是 ws:// 或 wss:// 时原样返回。
func ResolveURL(address, scheme string, port int, path string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, address)
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		u.Scheme = strings.ToLower(u.Scheme)
		return u.String(), nil
	}

	switch {
	case scheme != "":
		u.Scheme = scheme
	case strings.EqualFold(u.Scheme, "https"):
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	if port != 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	if path != "" {
		u.Path = path
		u.RawPath = ""
	}
	return u.String(), nil
}
