// Package tcp accepts plain IRC clients over TCP and runs a session per connection.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/session"
)

const acceptBackoff = 50 * time.Millisecond

// Config holds listener settings.
type Config struct {
	Addr          string
	MaxLineLength int
	WriteTimeout  time.Duration
}

// Server is the TCP listener.
type Server struct {
	cfg  Config
	hub  session.Hub
	opts session.Options
	log  zerolog.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[*Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer builds a server that hands every accepted connection to hub.
func NewServer(cfg Config, hub session.Hub, opts session.Options, logger *zerolog.Logger) *Server {
	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = 4096
	}
	return &Server{
		cfg:   cfg,
		hub:   hub,
		opts:  opts,
		log:   logger.With().Str("component", "tcp").Logger(),
		conns: make(map[*Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. On return the listener
// and every open connection are closed and all sessions have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("irc listener started")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
		s.closeAll()
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.closeAll()
				s.wg.Wait()
				s.log.Info().Msg("irc listener stopped")
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			select {
			case <-time.After(acceptBackoff):
			case <-ctx.Done():
			}
			continue
		}

		conn := NewConn(nc, s.cfg.MaxLineLength, s.cfg.WriteTimeout)
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handle(ctx, conn)
	}
}

// Addr returns the bound listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) handle(ctx context.Context, conn *Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	if err := session.New(conn, s.hub, s.opts, &s.log).Serve(ctx); err != nil {
		s.log.Warn().Err(err).Str("remote", conn.RemoteAddr()).Msg("session ended with error")
	}
}

// track returns false once the server is shutting down.
func (s *Server) track(conn *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for conn := range conns {
		_ = conn.Close()
	}
}
