package core

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

type sessionOp struct {
	reg      Registration
	snapshot chan<- []ClientInfo
}

// ClientInfo is a point-in-time view of a registered client.
type ClientInfo struct {
	ID   string `json:"id"`
	Nick string `json:"nick"`
	Addr string `json:"addr"`
}

// SessionRegistry is the single worker owning the registered client list.
type SessionRegistry struct {
	q       *queues
	clients map[string]*Client

	format  proto.Formatter
	welcome string
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func newSessionRegistry(format proto.Formatter, welcome string, q *queues, logger *zerolog.Logger, m *metrics.Metrics) *SessionRegistry {
	return &SessionRegistry{
		q:       q,
		clients: make(map[string]*Client),
		format:  format,
		welcome: welcome,
		log:     logger.With().Str("component", "sessions").Logger(),
		metrics: m,
	}
}

// Run processes registrations in arrival order until ctx is done.
func (s *SessionRegistry) Run(ctx context.Context) {
	for {
		op, ok := s.q.sessions.Pop(ctx)
		if !ok {
			return
		}
		if op.snapshot != nil {
			op.snapshot <- s.snapshot()
			continue
		}
		s.handle(op.reg)
	}
}

func (s *SessionRegistry) handle(reg Registration) {
	if reg.Client == nil {
		s.log.Warn().Msg("registration without client")
		return
	}

	switch reg.Action {
	case ActionRegister:
		s.register(reg.Client)
	case ActionUnregister:
		s.unregister(reg.Client, reg.Reason)
	default:
		s.log.Warn().Int("action", int(reg.Action)).Msg("unknown registration action")
	}
}

func (s *SessionRegistry) register(c *Client) {
	if _, exists := s.clients[c.ID]; exists {
		s.log.Warn().Str("client_id", c.ID).Msg("client already registered")
		return
	}

	record(s.q.audit, c, store.ActionRegister, "", "")
	s.q.postman.Push(postmanOp{delivery: Delivery{
		Client:   c,
		Content:  s.format.Welcome(c.Nick, s.welcome),
		Greeting: true,
	}})
	s.clients[c.ID] = c
	s.metrics.SetRegistered(len(s.clients))
	s.log.Info().Str("client_id", c.ID).Str("nick", c.Nick).Str("addr", c.Addr).Msg("client registered")
}

// unregister is idempotent: a second call for the same client only repeats
// no-op cleanup downstream.
func (s *SessionRegistry) unregister(c *Client, reason string) {
	c.gone.Store(true)

	if _, exists := s.clients[c.ID]; exists {
		delete(s.clients, c.ID)
		s.metrics.SetRegistered(len(s.clients))
		record(s.q.audit, c, store.ActionUnregister, "", reason)
		s.log.Info().Str("client_id", c.ID).Str("nick", c.Nick).Str("reason", reason).Msg("client unregistered")
	}

	s.q.channels.Push(channelOp{ev: ChannelEvent{Client: c, Body: reason, Leave: true, LeaveAll: true}})
	s.q.postman.Push(postmanOp{release: c})
}

func (s *SessionRegistry) snapshot() []ClientInfo {
	out := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, ClientInfo{ID: c.ID, Nick: c.Nick, Addr: c.Addr})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nick != out[j].Nick {
			return out[i].Nick < out[j].Nick
		}
		return out[i].ID < out[j].ID
	})
	return out
}
