package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/session"
)

// WSConfig tunes gateway connections.
type WSConfig struct {
	MaxLineLength int
	WriteTimeout  time.Duration
	// RateLimit caps inbound lines per minute. Zero disables it.
	RateLimit int
}

// WSHandler upgrades HTTP connections and runs an IRC session over each one.
// Every text message carries one or more protocol lines; every outbound line
// is sent as its own text message without the CRLF terminator.
type WSHandler struct {
	hub  session.Hub
	opts session.Options
	cfg  WSConfig
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub session.Hub, opts session.Options, cfg WSConfig, logger *zerolog.Logger) stdhttp.Handler {
	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = 4096
	}
	return &WSHandler{hub: hub, opts: opts, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		Subprotocols:       []string{"irc", "text.ircv3.net"},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	ws.SetReadLimit(int64(h.cfg.MaxLineLength))

	conn := newWSConn(ctx, ws, remoteHost(r.RemoteAddr), h.cfg)
	if err := session.New(conn, h.hub, h.opts, h.log).Serve(ctx); err != nil {
		h.log.Warn().Err(err).Str("remote", conn.RemoteAddr()).Msg("ws session ended with error")
	}
}

// wsConn adapts a websocket connection to session.Conn.
type wsConn struct {
	ctx          context.Context
	ws           *websocket.Conn
	host         string
	writeTimeout time.Duration
	limiter      *rateLimiter

	// pending holds lines of the last message not yet returned by ReadLine.
	pending []string

	mu        sync.Mutex
	closeOnce sync.Once
}

func newWSConn(ctx context.Context, ws *websocket.Conn, host string, cfg WSConfig) *wsConn {
	return &wsConn{
		ctx:          ctx,
		ws:           ws,
		host:         host,
		writeTimeout: cfg.WriteTimeout,
		limiter:      newRateLimiter(cfg.RateLimit),
	}
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		typ, data, err := c.ws.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return "", io.EOF
			}
			return "", fmt.Errorf("%w: %v", core.ErrConnClosed, err)
		}
		if typ != websocket.MessageText {
			continue
		}
		c.pending = splitLines(string(data))
	}

	line := c.pending[0]
	c.pending = c.pending[1:]
	if !c.limiter.allow() {
		// Flooded lines are dropped. An empty line is ignored by the session.
		return "", nil
	}
	return line, nil
}

func (c *wsConn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.ctx
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	msg := strings.TrimRight(string(p), "\r\n")
	if err := c.ws.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
		// A failed websocket write leaves the connection unusable.
		return fmt.Errorf("%w: %v", core.ErrConnClosed, err)
	}
	return nil
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close(websocket.StatusNormalClosure, "")
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})
	return err
}

func (c *wsConn) RemoteAddr() string {
	return c.host
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
