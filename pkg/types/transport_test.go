package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportKind(t *testing.T) {
	tests := []struct {
		k    TransportKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindWebTransport, "webtransport"},
		{KindWebSocket, "websocket"},
		{TransportKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.k.String(); got != tt.want {
				t.Errorf("TransportKind(%d).String() = %q, want %q", tt.k, got, tt.want)
			}
		})
	}
}

func TestParseTransportKind(t *testing.T) {
	k, err := ParseTransportKind("websocket")
	require.NoError(t, err)
	assert.Equal(t, KindWebSocket, k)

	_, err = ParseTransportKind("carrier-pigeon")
	assert.Error(t, err)
}

// TestTransportKind_JSON 测试在 JSON 中以名称形式出现
func TestTransportKind_JSON(t *testing.T) {
	type status struct {
		Transport TransportKind `json:"transport"`
	}

	data, err := json.Marshal(status{Transport: KindWebTransport})
	require.NoError(t, err)
	assert.JSONEq(t, `{"transport":"webtransport"}`, string(data))

	var got status
	require.NoError(t, json.Unmarshal([]byte(`{"transport":"websocket"}`), &got))
	assert.Equal(t, KindWebSocket, got.Transport)
}

func TestConnectError(t *testing.T) {
	cause := errors.New("no route")
	err := NewConnectError(KindWebSocket, "ws://h/ws", ReasonIO, cause)

	assert.Equal(t, "websocket connect ws://h/ws: io: no route", err.Error())
	assert.ErrorIs(t, err, cause)

	var ce *ConnectError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &ce)
	assert.Equal(t, ReasonIO, ce.Reason)
	assert.Equal(t, "reason(9)", ConnectReason(9).String())
}

func TestSendError(t *testing.T) {
	err := &SendError{Kind: KindWebTransport, Err: ErrUnexpectedReply}
	assert.ErrorIs(t, err, ErrUnexpectedReply)
	assert.Contains(t, err.Error(), "webtransport send")
}
