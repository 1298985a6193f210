package store

import (
	"context"
	"time"
)

// EventAction is what happened to a client.
type EventAction string

const (
	ActionRegister   EventAction = "register"
	ActionUnregister EventAction = "unregister"
	ActionJoin       EventAction = "join"
	ActionPart       EventAction = "part"
)

// Event is one audit record of session activity.
type Event struct {
	ID        int64
	ClientID  string
	Nick      string
	Addr      string
	Action    EventAction
	Channel   string // empty for register/unregister
	Detail    string // part or quit reason
	CreatedAt time.Time
}

// EventStore handles audit persistence.
type EventStore interface {
	// RecordEvent persists one event. CreatedAt defaults to now when zero.
	RecordEvent(ctx context.Context, ev *Event) error

	// RecentEvents returns up to limit events, newest first.
	RecentEvents(ctx context.Context, limit int) ([]*Event, error)

	// EventsForClient returns all events of one client, oldest first.
	EventsForClient(ctx context.Context, clientID string) ([]*Event, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	EventStore

	// Close closes the underlying database connection.
	Close() error
}
