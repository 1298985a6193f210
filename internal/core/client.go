package core

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Conn is the outbound half of a client connection.
type Conn interface {
	// Write sends p and flushes it. Implementations must be safe for concurrent use.
	Write(p []byte) error
	Close() error
}

// Client is a registered chat participant as seen by the core layer.
// Two clients are the same client iff their IDs are equal.
type Client struct {
	ID   string
	Nick string
	// Addr is the host part of the peer address, used in message prefixes.
	Addr string

	conn Conn
	// gone is set by the session registry on unregister. Deliveries and joins
	// for a gone client are dropped.
	gone atomic.Bool
}

// NewClientID returns a fresh globally unique client id.
func NewClientID() string {
	return uuid.NewString()
}

// NewClient constructs a client bound to conn.
func NewClient(id, nick, addr string, conn Conn) *Client {
	if id == "" {
		id = NewClientID()
	}
	return &Client{
		ID:   id,
		Nick: nick,
		Addr: addr,
		conn: conn,
	}
}

// Same reports whether c and other denote the same client.
func (c *Client) Same(other *Client) bool {
	return c != nil && other != nil && c.ID == other.ID
}

// Gone reports whether the client was unregistered.
func (c *Client) Gone() bool {
	return c.gone.Load()
}
