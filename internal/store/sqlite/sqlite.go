package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// Schema creates the audit tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id  TEXT NOT NULL,
	nick       TEXT NOT NULL,
	addr       TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	channel    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_events_client ON audit_events(client_id, id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; this also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordEvent inserts an audit event and fills its ID.
func (s *SQLiteStore) RecordEvent(ctx context.Context, ev *store.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (client_id, nick, addr, action, channel, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		ev.ClientID, ev.Nick, ev.Addr, string(ev.Action), ev.Channel, ev.Detail, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *SQLiteStore) RecentEvents(ctx context.Context, limit int) ([]*store.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, client_id, nick, addr, action, channel, detail, created_at
		FROM audit_events
		ORDER BY id DESC
		LIMIT ?
	`
	return s.queryEvents(ctx, query, limit)
}

// EventsForClient returns all events of one client, oldest first.
func (s *SQLiteStore) EventsForClient(ctx context.Context, clientID string) ([]*store.Event, error) {
	query := `
		SELECT id, client_id, nick, addr, action, channel, detail, created_at
		FROM audit_events
		WHERE client_id = ?
		ORDER BY id ASC
	`
	return s.queryEvents(ctx, query, clientID)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]*store.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []*store.Event
	for rows.Next() {
		var (
			ev     store.Event
			action string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.ClientID,
			&ev.Nick,
			&ev.Addr,
			&action,
			&ev.Channel,
			&ev.Detail,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Action = store.EventAction(action)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
