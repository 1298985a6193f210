package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

const testServer = "irc.test"

var testFormat = proto.NewFormatter(testServer)

// fakeConn records every line written to it.
type fakeConn struct {
	lines chan string

	mu       sync.Mutex
	err      error
	failOnce error
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{lines: make(chan string, 1024)}
}

func (c *fakeConn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	if c.failOnce != nil {
		err := c.failOnce
		c.failOnce = nil
		return err
	}
	for _, line := range strings.SplitAfter(string(p), "\r\n") {
		if line == "" {
			continue
		}
		c.lines <- strings.TrimSuffix(line, "\r\n")
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func mustLine(t *testing.T, conn *fakeConn) string {
	t.Helper()

	select {
	case line := <-conn.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a line, got none")
		return ""
	}
}

func expectLine(t *testing.T, conn *fakeConn, want string) {
	t.Helper()

	want = strings.TrimSuffix(want, "\r\n")
	if got := mustLine(t, conn); got != want {
		t.Fatalf("unexpected line\n got: %q\nwant: %q", got, want)
	}
}

func expectNoLine(t *testing.T, conn *fakeConn) {
	t.Helper()

	select {
	case line := <-conn.lines:
		t.Fatalf("unexpected line: %q", line)
	case <-time.After(100 * time.Millisecond):
	}
}

func startHub(t testing.TB, opts ...Option) *Hub {
	t.Helper()

	hub := NewHub(Config{ServerName: testServer, Welcome: "Welcome"}, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// connect registers a client and consumes its welcome line.
func connect(t *testing.T, hub *Hub, nick string) (*Client, *fakeConn) {
	t.Helper()

	conn := newFakeConn()
	c := NewClient("", nick, "host-"+nick, conn)
	hub.Register(c)
	expectLine(t, conn, testFormat.Welcome(nick, "Welcome"))
	return c, conn
}

// joinAndDrain joins channel and consumes the joiner's four reply lines.
func joinAndDrain(t *testing.T, hub *Hub, c *Client, conn *fakeConn, channel string) {
	t.Helper()

	hub.Join(c, channel)
	expectLine(t, conn, testFormat.Join(c.Nick, c.Addr, channel))
	for i := 0; i < 3; i++ {
		mustLine(t, conn)
	}
}

func channelMembers(t *testing.T, hub *Hub, name string) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	channels, err := hub.Channels(ctx)
	if err != nil {
		t.Fatalf("channels snapshot: %v", err)
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch.Members
		}
	}
	t.Fatalf("channel %s not in snapshot", name)
	return nil
}
