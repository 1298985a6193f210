package http

import (
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// EventResponse is an audit event in API responses.
type EventResponse struct {
	ID        int64  `json:"id"`
	ClientID  string `json:"client_id"`
	Nick      string `json:"nick"`
	Addr      string `json:"addr"`
	Action    string `json:"action"`
	Channel   string `json:"channel,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

func eventToResponse(ev *store.Event) EventResponse {
	return EventResponse{
		ID:        ev.ID,
		ClientID:  ev.ClientID,
		Nick:      ev.Nick,
		Addr:      ev.Addr,
		Action:    string(ev.Action),
		Channel:   ev.Channel,
		Detail:    ev.Detail,
		CreatedAt: ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func eventsToResponse(events []*store.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventToResponse(ev))
	}
	return out
}
