package core

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDisconnect(t *testing.T) {
	disconnects := []error{
		syscall.ECONNRESET,
		syscall.EPIPE,
		&net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)},
		net.ErrClosed,
		io.ErrClosedPipe,
		fmt.Errorf("ws write: %w", ErrConnClosed),
	}
	for _, err := range disconnects {
		require.True(t, IsDisconnect(err), "%v", err)
	}

	others := []error{nil, errors.New("boom"), os.ErrDeadlineExceeded, io.ErrShortWrite}
	for _, err := range others {
		require.False(t, IsDisconnect(err), "%v", err)
	}
}
