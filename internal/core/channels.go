package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const (
	defaultPartReason = "Leaving"
	defaultQuitReason = "Client quit"
)

type channelOp struct {
	ev       ChannelEvent
	snapshot chan<- []ChannelInfo
}

// ChannelInfo is a point-in-time view of one channel.
type ChannelInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// ChannelRegistry is the single worker owning channel membership.
// The channel set is fixed at construction.
type ChannelRegistry struct {
	q        *queues
	channels map[string]*Channel
	order    []string

	format  proto.Formatter
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func newChannelRegistry(specs []ChannelSpec, format proto.Formatter, q *queues, logger *zerolog.Logger, m *metrics.Metrics) *ChannelRegistry {
	r := &ChannelRegistry{
		q:        q,
		channels: make(map[string]*Channel, len(specs)),
		format:   format,
		log:      logger.With().Str("component", "channels").Logger(),
		metrics:  m,
	}
	for _, spec := range specs {
		key := channelKey(spec.Name)
		if _, dup := r.channels[key]; dup {
			continue
		}
		r.channels[key] = NewChannel(spec.Name, spec.Description)
		r.order = append(r.order, key)
		m.SetChannelMembers(spec.Name, 0)
	}
	return r
}

// Run processes channel events in arrival order until ctx is done.
func (r *ChannelRegistry) Run(ctx context.Context) {
	for {
		op, ok := r.q.channels.Pop(ctx)
		if !ok {
			return
		}
		if op.snapshot != nil {
			op.snapshot <- r.snapshot()
			continue
		}
		r.handle(op.ev)
	}
}

func (r *ChannelRegistry) handle(ev ChannelEvent) {
	if ev.Client == nil {
		r.log.Warn().Msg("channel event without client")
		return
	}

	switch {
	case ev.LeaveAll:
		r.leaveAll(ev.Client, ev.Body)
	case ev.Leave:
		r.leave(ev.Client, ev.Channel, ev.Body)
	default:
		r.join(ev.Client, ev.Channel)
	}
}

func (r *ChannelRegistry) lookup(name string) *Channel {
	return r.channels[channelKey(name)]
}

func (r *ChannelRegistry) join(c *Client, name string) {
	logger := r.log.With().Str("client_id", c.ID).Str("nick", c.Nick).Str("channel", name).Logger()

	ch := r.lookup(name)
	if ch == nil {
		logger.Debug().Msg("join: unknown channel")
		return
	}
	if c.Gone() {
		logger.Debug().Msg("join: client already unregistered")
		return
	}
	if !ch.Add(c) {
		logger.Debug().Msg("join: already a member")
		return
	}
	r.metrics.SetChannelMembers(ch.Name, ch.Len())
	record(r.q.audit, c, store.ActionJoin, ch.Name, "")
	r.q.router.Push(routerOp{change: &membershipChange{channel: ch.Name, client: c, joined: true}})

	joinLine := r.format.Join(c.Nick, c.Addr, ch.Name)

	// The confirmation is queued on the client's own outbox ahead of the
	// member list, so the client learns it is a member before the snapshot.
	deliver(r.q.postman, c, joinLine)
	r.q.router.Push(routerOp{broadcast: &BroadcastEvent{
		Content: joinLine,
		Sender:  c,
		Channel: ch.Name,
	}})
	deliver(r.q.postman, c, r.format.Topic(c.Nick, ch.Name, ch.Description))
	deliver(r.q.postman, c, r.format.Names(c.Nick, ch.Name, ch.Nicks()))
	deliver(r.q.postman, c, r.format.EndOfNames(c.Nick, ch.Name))
	logger.Debug().Int("members", ch.Len()).Msg("client joined")
}

func (r *ChannelRegistry) leave(c *Client, name, body string) {
	logger := r.log.With().Str("client_id", c.ID).Str("nick", c.Nick).Str("channel", name).Logger()

	ch := r.lookup(name)
	if ch == nil {
		logger.Debug().Msg("part: unknown channel")
		return
	}
	if !ch.Remove(c) {
		logger.Debug().Msg("part: not a member")
		return
	}
	r.metrics.SetChannelMembers(ch.Name, ch.Len())
	r.q.router.Push(routerOp{change: &membershipChange{channel: ch.Name, client: c}})

	if body == "" {
		body = defaultPartReason
	}
	record(r.q.audit, c, store.ActionPart, ch.Name, body)
	partLine := r.format.Part(c.Nick, c.Addr, ch.Name, body)

	r.q.router.Push(routerOp{broadcast: &BroadcastEvent{
		Content: partLine,
		Sender:  c,
		Channel: ch.Name,
	}})
	// The client is no longer a member, so it needs its own copy.
	deliver(r.q.postman, c, partLine)
	logger.Debug().Int("members", ch.Len()).Msg("client left")
}

// leaveAll removes c from every channel. Nothing is sent to c itself.
func (r *ChannelRegistry) leaveAll(c *Client, reason string) {
	if reason == "" {
		reason = defaultQuitReason
	}

	for _, key := range r.order {
		ch := r.channels[key]
		if !ch.Remove(c) {
			continue
		}
		r.metrics.SetChannelMembers(ch.Name, ch.Len())
		r.q.router.Push(routerOp{change: &membershipChange{channel: ch.Name, client: c}})
		r.q.router.Push(routerOp{broadcast: &BroadcastEvent{
			Content: r.format.Part(c.Nick, c.Addr, ch.Name, reason),
			Sender:  c,
			Channel: ch.Name,
		}})
		record(r.q.audit, c, store.ActionPart, ch.Name, reason)
		r.log.Debug().Str("client_id", c.ID).Str("nick", c.Nick).Str("channel", ch.Name).Msg("client purged from channel")
	}
}

func (r *ChannelRegistry) snapshot() []ChannelInfo {
	out := make([]ChannelInfo, 0, len(r.order))
	for _, key := range r.order {
		ch := r.channels[key]
		out = append(out, ChannelInfo{
			Name:        ch.Name,
			Description: ch.Description,
			Members:     ch.Nicks(),
		})
	}
	return out
}
