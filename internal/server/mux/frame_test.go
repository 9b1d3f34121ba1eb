package mux

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hudwiz/go-rtlink/internal/core/metrics"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

func TestReadFrame(t *testing.T) {
	buf := make([]byte, types.MaxFrameSize)

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"empty", 0, nil},
		{"small", 5, nil},
		{"exactly limit", types.MaxFrameSize, nil},
		{"one over limit", types.MaxFrameSize + 1, ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(bytes.Repeat([]byte("a"), tt.size))
			n, err := readFrame(r, buf)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, n)
		})
	}

	t.Log("✅ 64 KiB 边界正确")
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadFrame_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := readFrame(io.MultiReader(strings.NewReader("abc"), failingReader{boom}), make([]byte, 16))
	assert.ErrorIs(t, err, boom)
}

func TestDecodeFrame(t *testing.T) {
	msg, err := decodeFrame(metrics.ChannelBi, []byte("héllo"))
	require.NoError(t, err)
	assert.Equal(t, "héllo", msg)

	_, err = decodeFrame(metrics.ChannelDatagram, []byte{0xff, 0xfe})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
	assert.Contains(t, err.Error(), "datagram")

	t.Log("✅ UTF-8 校验正确")
}

func TestScratch_Exclusive(t *testing.T) {
	s := newScratch(8)
	buf := s.acquire()
	assert.Len(t, buf, 8)

	acquired := make(chan []byte)
	go func() { acquired <- s.acquire() }()

	select {
	case <-acquired:
		t.Fatal("缓冲区被两次取出")
	default:
	}

	s.release(buf[:3])
	got := <-acquired
	assert.Len(t, got, 8, "归还后恢复完整长度")
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "awaiting_session", StateAwaitingSession.String())
	assert.Equal(t, "servicing", StateServicing.String())
	assert.Equal(t, "state(9)", SessionState(9).String())
}
