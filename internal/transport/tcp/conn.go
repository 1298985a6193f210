package tcp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/core"
)

// Conn adapts a net.Conn to a line oriented session connection.
type Conn struct {
	nc           net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
	host         string

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps nc. Lines longer than maxLine bytes fail the read.
func NewConn(nc net.Conn, maxLine int, writeTimeout time.Duration) *Conn {
	scanner := bufio.NewScanner(nc)
	scanner.Buffer(make([]byte, 0, 512), maxLine)

	host := nc.RemoteAddr().String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return &Conn{
		nc:           nc,
		scanner:      scanner,
		writeTimeout: writeTimeout,
		host:         host,
	}
}

// ReadLine returns the next line without its CRLF or LF terminator.
func (c *Conn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
}

// Write sends p in full. Concurrent writers are serialized.
func (c *Conn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %v", core.ErrConnClosed, err)
		}
	}
	if _, err := c.nc.Write(p); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close closes the underlying connection once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.nc.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the peer host without port.
func (c *Conn) RemoteAddr() string {
	return c.host
}
