package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const restartDelay = 100 * time.Millisecond

// queues are the inboxes of every worker. Each has exactly one consumer.
type queues struct {
	sessions *Queue[sessionOp]
	channels *Queue[channelOp]
	router   *Queue[routerOp]
	postman  *Queue[postmanOp]
	// audit is nil when no store is configured.
	audit *Queue[store.Event]
}

func newQueues(audit bool) *queues {
	q := &queues{
		sessions: NewQueue[sessionOp](),
		channels: NewQueue[channelOp](),
		router:   NewQueue[routerOp](),
		postman:  NewQueue[postmanOp](),
	}
	if audit {
		q.audit = NewQueue[store.Event]()
	}
	return q
}

// Config holds the hub's static settings.
type Config struct {
	ServerName string
	Welcome    string
	Channels   []ChannelSpec
}

// Hub wires the session registry, channel registry, broadcast router and
// postman together. All methods that submit events are fire-and-forget and
// safe for concurrent use.
type Hub struct {
	q      *queues
	format proto.Formatter

	sessions *SessionRegistry
	channels *ChannelRegistry
	router   *Router
	postman  *Postman
	recorder *Recorder

	log     *zerolog.Logger
	metrics *metrics.Metrics
	store   store.EventStore
}

// NewHub creates a hub with the fixed channel set from cfg.
func NewHub(cfg Config, opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{log: &nop}
	for _, opt := range opts {
		opt(h)
	}

	if cfg.ServerName == "" {
		cfg.ServerName = "localhost"
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = DefaultChannels()
	}

	h.format = proto.NewFormatter(cfg.ServerName)
	h.q = newQueues(h.store != nil)
	h.sessions = newSessionRegistry(h.format, cfg.Welcome, h.q, h.log, h.metrics)
	h.channels = newChannelRegistry(cfg.Channels, h.format, h.q, h.log, h.metrics)
	h.router = newRouter(cfg.Channels, h.q, h.log, h.metrics)
	h.postman = newPostman(h.q, h.log, h.metrics)
	if h.store != nil {
		h.recorder = newRecorder(h.q, h.store, h.log)
	}
	return h
}

// Formatter returns the line formatter shared with sessions.
func (h *Hub) Formatter() proto.Formatter {
	return h.format
}

// Run starts every worker and blocks until ctx is done and they all stopped.
func (h *Hub) Run(ctx context.Context) {
	var wg sync.WaitGroup
	start := func(name string, run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.supervise(ctx, name, run)
		}()
	}

	start("sessions", h.sessions.Run)
	start("channels", h.channels.Run)
	start("router", h.router.Run)
	start("postman", h.postman.Run)
	if h.recorder != nil {
		start("recorder", h.recorder.Run)
	}

	wg.Wait()
	h.postman.Wait()
	h.log.Info().Msg("hub stopped")
}

// supervise runs a worker loop, restarting it after a panic. Worker state
// lives in the worker struct and survives the restart; the event being
// processed when the panic happened is lost.
func (h *Hub) supervise(ctx context.Context, name string, run func(context.Context)) {
	for {
		if !h.runWorker(ctx, name, run) || ctx.Err() != nil {
			return
		}
		h.metrics.WorkerRestarted(name)

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

func (h *Hub) runWorker(ctx context.Context, name string, run func(context.Context)) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Str("worker", name).Interface("panic", r).Msg("worker crashed, restarting")
			panicked = true
		}
	}()
	run(ctx)
	return false
}

// Register submits a newly named client.
func (h *Hub) Register(c *Client) {
	h.q.sessions.Push(sessionOp{reg: Registration{Client: c, Action: ActionRegister}})
}

// Unregister removes c from the registry and every channel.
func (h *Hub) Unregister(c *Client, reason string) {
	h.q.sessions.Push(sessionOp{reg: Registration{Client: c, Action: ActionUnregister, Reason: reason}})
}

// Join asks the channel registry to add c to channel.
func (h *Hub) Join(c *Client, channel string) {
	h.q.channels.Push(channelOp{ev: ChannelEvent{Client: c, Channel: channel}})
}

// Part asks the channel registry to remove c from channel.
func (h *Hub) Part(c *Client, channel, body string) {
	h.q.channels.Push(channelOp{ev: ChannelEvent{Client: c, Channel: channel, Body: body, Leave: true}})
}

// Broadcast hands ev to the router.
func (h *Hub) Broadcast(ev BroadcastEvent) {
	h.q.router.Push(routerOp{broadcast: &ev})
}

// Channels returns the current membership of every channel.
func (h *Hub) Channels(ctx context.Context) ([]ChannelInfo, error) {
	reply := make(chan []ChannelInfo, 1)
	h.q.channels.Push(channelOp{snapshot: reply})
	return await(ctx, reply)
}

// Clients returns the registered clients.
func (h *Hub) Clients(ctx context.Context) ([]ClientInfo, error) {
	reply := make(chan []ClientInfo, 1)
	h.q.sessions.Push(sessionOp{snapshot: reply})
	return await(ctx, reply)
}

func await[T any](ctx context.Context, reply <-chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
