package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
)

// membershipChange keeps the router's view of a channel in step with the
// channel registry. It is always queued ahead of the announcement it enables.
type membershipChange struct {
	channel string
	client  *Client
	joined  bool
}

type routerOp struct {
	broadcast *BroadcastEvent
	change    *membershipChange
}

// Router is the single worker fanning broadcasts out to channel members.
// It keeps its own membership view fed by the channel registry, so it never
// reads state owned by another worker.
type Router struct {
	q       *queues
	members map[string]map[string]*Client

	log     zerolog.Logger
	metrics *metrics.Metrics
}

func newRouter(specs []ChannelSpec, q *queues, logger *zerolog.Logger, m *metrics.Metrics) *Router {
	r := &Router{
		q:       q,
		members: make(map[string]map[string]*Client, len(specs)),
		log:     logger.With().Str("component", "router").Logger(),
		metrics: m,
	}
	for _, spec := range specs {
		r.members[channelKey(spec.Name)] = make(map[string]*Client)
	}
	return r
}

// Run processes router events in arrival order until ctx is done.
func (r *Router) Run(ctx context.Context) {
	for {
		op, ok := r.q.router.Pop(ctx)
		if !ok {
			return
		}
		switch {
		case op.change != nil:
			r.apply(op.change)
		case op.broadcast != nil:
			r.fanOut(op.broadcast)
		}
	}
}

func (r *Router) apply(change *membershipChange) {
	set, ok := r.members[channelKey(change.channel)]
	if !ok {
		r.log.Warn().Str("channel", change.channel).Msg("membership change for unknown channel")
		return
	}
	if change.joined {
		set[change.client.ID] = change.client
		return
	}
	delete(set, change.client.ID)
}

func (r *Router) fanOut(ev *BroadcastEvent) {
	set, ok := r.members[channelKey(ev.Channel)]
	if !ok {
		r.log.Debug().Str("channel", ev.Channel).Msg("broadcast to unknown channel dropped")
		return
	}
	r.metrics.Broadcast()

	// Each delivery is an independent enqueue; one member's outbox cannot hold up another.
	for _, member := range set {
		if !ev.SendToSender && member.Same(ev.Sender) {
			continue
		}
		deliver(r.q.postman, member, ev.Content)
	}
}
