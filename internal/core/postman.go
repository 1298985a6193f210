package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
)

type postmanOp struct {
	delivery Delivery
	release  *Client
}

// outbox serializes every write to one client's connection.
// Lines queued before the greeting are held until it arrives.
type outbox struct {
	client  *Client
	queue   *Queue[[]byte]
	started bool
}

// Postman is the single worker that owns outbound delivery.
// Each client gets its own outbox and writer goroutine, so a slow or stuck
// socket never delays delivery to anyone else.
type Postman struct {
	in       *Queue[postmanOp]
	sessions *Queue[sessionOp]

	outboxes map[string]*outbox
	writers  sync.WaitGroup

	log     zerolog.Logger
	metrics *metrics.Metrics
}

// newPostman builds a postman consuming q.postman. Dead connections are
// reported to the session registry as unregister events.
func newPostman(q *queues, logger *zerolog.Logger, m *metrics.Metrics) *Postman {
	return &Postman{
		in:       q.postman,
		sessions: q.sessions,
		outboxes: make(map[string]*outbox),
		log:      logger.With().Str("component", "postman").Logger(),
		metrics:  m,
	}
}

// Run processes deliveries until ctx is done.
func (p *Postman) Run(ctx context.Context) {
	for {
		op, ok := p.in.Pop(ctx)
		if !ok {
			return
		}
		if op.release != nil {
			p.release(op.release)
			continue
		}
		p.deliver(ctx, op.delivery)
	}
}

// Wait blocks until every outbox writer has exited.
func (p *Postman) Wait() {
	p.writers.Wait()
}

func (p *Postman) deliver(ctx context.Context, d Delivery) {
	if d.Client == nil {
		p.log.Warn().Msg("delivery without client")
		return
	}
	if d.Client.Gone() {
		p.metrics.Delivery(metrics.DeliveryDropped)
		return
	}

	box, ok := p.outboxes[d.Client.ID]
	if !ok {
		box = &outbox{client: d.Client, queue: NewQueue[[]byte]()}
		p.outboxes[d.Client.ID] = box
	}

	data := []byte(d.Content)
	if !d.Greeting || box.started {
		box.queue.Push(data)
		return
	}

	box.queue.PushFront(data)
	box.started = true
	p.writers.Add(1)
	go p.write(ctx, box)
}

func (p *Postman) write(ctx context.Context, box *outbox) {
	defer p.writers.Done()

	c := box.client
	for {
		data, ok := box.queue.Pop(ctx)
		if !ok {
			return
		}
		if c.conn == nil {
			p.metrics.Delivery(metrics.DeliveryDropped)
			continue
		}

		err := c.conn.Write(data)
		if err == nil {
			p.metrics.Delivery(metrics.DeliveryOK)
			continue
		}

		if IsDisconnect(err) {
			p.metrics.Delivery(metrics.DeliveryDisconnected)
			if !c.Gone() {
				p.log.Info().Err(err).Str("client_id", c.ID).Str("nick", c.Nick).Msg("client connection lost")
				p.sessions.Push(sessionOp{reg: Registration{
					Client: c,
					Action: ActionUnregister,
					Reason: "Connection reset",
				}})
			}
			_ = c.conn.Close()
			return
		}

		p.metrics.Delivery(metrics.DeliveryError)
		p.log.Warn().Err(err).Str("client_id", c.ID).Str("nick", c.Nick).Msg("dropping undeliverable line")
	}
}

// release lets the outbox of c drain what it holds and stop.
func (p *Postman) release(c *Client) {
	box, ok := p.outboxes[c.ID]
	if !ok {
		return
	}
	box.queue.Close()
	delete(p.outboxes, c.ID)
}

func deliver(q *Queue[postmanOp], c *Client, content string) {
	q.Push(postmanOp{delivery: Delivery{Client: c, Content: content}})
}
