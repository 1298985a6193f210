package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const recordTimeout = 5 * time.Second

// Recorder is the optional worker persisting audit events.
type Recorder struct {
	in    *Queue[store.Event]
	store store.EventStore
	log   zerolog.Logger
}

func newRecorder(q *queues, st store.EventStore, logger *zerolog.Logger) *Recorder {
	return &Recorder{
		in:    q.audit,
		store: st,
		log:   logger.With().Str("component", "recorder").Logger(),
	}
}

// Run persists events until ctx is done. Failed writes are logged and dropped.
func (r *Recorder) Run(ctx context.Context) {
	for {
		ev, ok := r.in.Pop(ctx)
		if !ok {
			return
		}
		writeCtx, cancel := context.WithTimeout(ctx, recordTimeout)
		if err := r.store.RecordEvent(writeCtx, &ev); err != nil {
			r.log.Warn().Err(err).Str("client_id", ev.ClientID).Str("action", string(ev.Action)).Msg("failed to record audit event")
		}
		cancel()
	}
}

// record queues an audit event; a nil queue means auditing is off.
func record(q *Queue[store.Event], c *Client, action store.EventAction, channel, detail string) {
	if q == nil {
		return
	}
	q.Push(store.Event{
		ClientID:  c.ID,
		Nick:      c.Nick,
		Addr:      c.Addr,
		Action:    action,
		Channel:   channel,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
}
