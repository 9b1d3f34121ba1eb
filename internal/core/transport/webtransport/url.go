package webtransport

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ResolveURL 将协商地址映射为 WebTransport 使用的 https URL
//
// port 非 0 时覆盖端口，path 非空时覆盖路径。
func ResolveURL(address string, port int, path string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "wt", "webtransport":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, address)
	}

	if port != 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	if path != "" {
		u.Path = path
		u.RawPath = ""
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
