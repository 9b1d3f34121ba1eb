package mux

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hudwiz/go-rtlink/internal/core/metrics"
)

// readFrame 读取直到 EOF 的一帧到 buf
//
// 帧恰好填满 buf 时再多读一个字节：有数据返回 ErrFrameTooLarge。
func readFrame(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, nil
	case err != nil:
		return n, err
	}

	var extra [1]byte
	m, err := io.ReadFull(r, extra[:])
	switch {
	case m > 0:
		return n, ErrFrameTooLarge
	case errors.Is(err, io.EOF):
		return n, nil
	default:
		return n, err
	}
}

// decodeFrame 校验帧为 UTF-8 并转换为字符串
func decodeFrame(ch metrics.Channel, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%s frame: %w", ch, ErrInvalidUTF8)
	}
	return string(b), nil
}
