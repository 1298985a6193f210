package core

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// ErrConnClosed is wrapped by transports when the peer is gone.
var ErrConnClosed = errors.New("connection closed")

// IsDisconnect reports whether err means the peer connection is dead
// (reset, broken pipe or already closed). Any other error is transient.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConnClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
