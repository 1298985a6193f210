// Package session runs the per-connection command loop: it reads protocol
// lines, keeps the connection's registration state and turns commands into
// hub events. It never touches shared state itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

const (
	reasonQuit     = "Client quit"
	reasonClosed   = "Connection closed"
	reasonShutdown = "Server shutting down"
)

// Hub is the set of core operations a session drives.
type Hub interface {
	Register(c *core.Client)
	Unregister(c *core.Client, reason string)
	Join(c *core.Client, channel string)
	Part(c *core.Client, channel, body string)
	Broadcast(ev core.BroadcastEvent)
}

// Conn is a line oriented, independently closable client connection.
type Conn interface {
	core.Conn
	// ReadLine blocks for the next line, without its terminator.
	ReadLine() (string, error)
	// RemoteAddr is the peer host used in message prefixes.
	RemoteAddr() string
}

// Options configures sessions.
type Options struct {
	Formatter proto.Formatter
	Gate      auth.Gate
	Metrics   *metrics.Metrics
}

// Session serves one connection.
type Session struct {
	conn Conn
	hub  Hub
	opts Options
	log  zerolog.Logger

	// client is nil until NICK registers the connection.
	client *core.Client
	passed bool
}

// New builds a session for conn.
func New(conn Conn, hub Hub, opts Options, logger *zerolog.Logger) *Session {
	return &Session{
		conn: conn,
		hub:  hub,
		opts: opts,
		log:  logger.With().Str("component", "session").Str("remote", conn.RemoteAddr()).Logger(),
	}
}

// Client returns the registered client, or nil.
func (s *Session) Client() *core.Client {
	return s.client
}

// Serve reads and dispatches lines until QUIT, a read failure, or ctx is done.
// The connection is closed on return. A clean end of stream is not an error.
func (s *Session) Serve(ctx context.Context) error {
	s.opts.Metrics.SessionOpened()
	defer s.opts.Metrics.SessionClosed()
	defer s.conn.Close()

	for {
		if ctx.Err() != nil {
			s.leave(reasonShutdown)
			return nil
		}

		line, err := s.conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				s.leave(reasonShutdown)
			} else {
				s.leave(reasonClosed)
			}
			if errors.Is(err, io.EOF) || core.IsDisconnect(err) || ctx.Err() != nil {
				s.log.Debug().Err(err).Msg("connection ended")
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}

		if done := s.handleLine(line); done {
			return nil
		}
	}
}

func (s *Session) leave(reason string) {
	if s.client == nil {
		return
	}
	s.hub.Unregister(s.client, reason)
	s.client = nil
}

// handleLine dispatches one line and reports whether the session is over.
func (s *Session) handleLine(line string) bool {
	msg, err := proto.Parse(line)
	if err != nil {
		if !errors.Is(err, proto.ErrEmptyLine) {
			s.log.Debug().Err(err).Str("line", line).Msg("unparsable line")
		}
		return false
	}

	s.opts.Metrics.Command(commandLabel(msg.Command))

	switch msg.Command {
	case proto.CommandNick:
		s.nick(msg)
	case proto.CommandPass:
		s.pass(msg)
	case proto.CommandJoin:
		s.join(msg)
	case proto.CommandPart:
		s.part(msg)
	case proto.CommandPrivmsg:
		s.privmsg(msg)
	case proto.CommandPing:
		s.ping(msg)
	case proto.CommandQuit:
		return s.quit(msg)
	default:
		s.log.Debug().Str("command", msg.Command).Msg("unsupported command ignored")
	}
	return false
}

// commandLabel bounds the metric label set to the supported commands.
func commandLabel(cmd string) string {
	switch cmd {
	case proto.CommandNick, proto.CommandPass, proto.CommandJoin, proto.CommandPart,
		proto.CommandPrivmsg, proto.CommandPing, proto.CommandQuit:
		return cmd
	default:
		return "unknown"
	}
}

// registered logs and reports false when cmd arrives before NICK.
func (s *Session) registered(cmd string) bool {
	if s.client != nil {
		return true
	}
	s.log.Debug().Str("command", cmd).Msg("command before registration dropped")
	return false
}

func (s *Session) pass(msg proto.Message) {
	if s.client != nil {
		s.log.Debug().Msg("PASS after registration ignored")
		return
	}
	if !s.opts.Gate.Required() {
		return
	}
	password, err := msg.Arg()
	if err != nil {
		s.log.Debug().Err(err).Msg("malformed PASS")
		return
	}
	if err := s.opts.Gate.Check(password); err != nil {
		s.log.Warn().Err(err).Msg("PASS rejected")
		return
	}
	s.passed = true
}

func (s *Session) nick(msg proto.Message) {
	nick, err := msg.Arg()
	if err != nil {
		s.log.Debug().Err(err).Msg("malformed NICK")
		return
	}
	if s.client != nil {
		s.log.Debug().Str("nick", nick).Msg("nick change not supported")
		return
	}
	if s.opts.Gate.Required() && !s.passed {
		s.log.Warn().Str("nick", nick).Msg("NICK without valid PASS dropped")
		return
	}

	s.client = core.NewClient(core.NewClientID(), proto.Sanitize(nick), s.conn.RemoteAddr(), s.conn)
	s.log = s.log.With().Str("client_id", s.client.ID).Str("nick", s.client.Nick).Logger()
	s.hub.Register(s.client)
}

func (s *Session) join(msg proto.Message) {
	if !s.registered(msg.Command) {
		return
	}
	targets, err := msg.Param(0)
	if err != nil {
		s.log.Debug().Err(err).Msg("malformed JOIN")
		return
	}
	for _, channel := range proto.SplitTargets(targets) {
		s.hub.Join(s.client, channel)
	}
}

func (s *Session) part(msg proto.Message) {
	if !s.registered(msg.Command) {
		return
	}
	targets, err := msg.Param(0)
	if err != nil {
		s.log.Debug().Err(err).Msg("malformed PART")
		return
	}
	for _, channel := range proto.SplitTargets(targets) {
		s.hub.Part(s.client, channel, msg.Trailing)
	}
}

func (s *Session) privmsg(msg proto.Message) {
	if !s.registered(msg.Command) {
		return
	}
	targets, err := msg.Param(0)
	if err != nil || !msg.HasTrailing {
		s.log.Debug().Msg("malformed PRIVMSG")
		return
	}

	c := s.client
	for _, target := range proto.SplitTargets(targets) {
		if !isChannel(target) {
			s.log.Debug().Str("target", target).Msg("PRIVMSG to non-channel target dropped")
			continue
		}
		s.hub.Broadcast(core.BroadcastEvent{
			Content: s.opts.Formatter.PrivMsg(c.Nick, c.Addr, target, msg.Trailing),
			Sender:  c,
			Channel: target,
		})
	}
}

// ping answers on the connection directly: clients may ping before NICK.
func (s *Session) ping(msg proto.Message) {
	token, err := msg.Arg()
	if err != nil {
		s.log.Debug().Err(err).Msg("malformed PING")
		return
	}
	if err := s.conn.Write([]byte(s.opts.Formatter.Pong(token))); err != nil {
		s.log.Warn().Err(err).Msg("failed to write PONG")
	}
}

func (s *Session) quit(msg proto.Message) bool {
	if !s.registered(msg.Command) {
		return false
	}
	reason := strings.TrimSpace(msg.Trailing)
	if reason == "" {
		reason = reasonQuit
	}
	s.leave(reason)
	return true
}

func isChannel(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "&")
}
