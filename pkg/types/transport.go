package types

import "fmt"

// ============================================================================
//                              TransportKind - 传输类型
// ============================================================================

// TransportKind 协商得到的实时传输类型
//
// 协商完成后不可变，仅用于诊断和展示（例如界面上显示当前使用的传输）。
type TransportKind int

const (
	// KindUnknown 未协商
	KindUnknown TransportKind = iota
	// KindWebTransport WebTransport（HTTP/3 over QUIC），首选传输
	KindWebTransport
	// KindWebSocket WebSocket，回退传输
	KindWebSocket
)

// String 返回传输类型的字符串表示
func (k TransportKind) String() string {
	switch k {
	case KindWebTransport:
		return "webtransport"
	case KindWebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (k TransportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (k *TransportKind) UnmarshalText(text []byte) error {
	kind, err := ParseTransportKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseTransportKind 解析传输类型名称
func ParseTransportKind(s string) (TransportKind, error) {
	switch s {
	case "webtransport":
		return KindWebTransport, nil
	case "websocket":
		return KindWebSocket, nil
	default:
		return KindUnknown, fmt.Errorf("unknown transport kind %q", s)
	}
}

// ============================================================================
//                              帧约定
// ============================================================================

const (
	// AckMessage 服务端对每个接收单元的回复
	AckMessage = "ACK"

	// MaxFrameSize 单帧最大字节数（64 KiB）
	MaxFrameSize = 64 * 1024
)
