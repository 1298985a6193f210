package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecentEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []store.Event{
		{ClientID: "a", Nick: "alice", Addr: "10.0.0.1", Action: store.ActionRegister},
		{ClientID: "a", Nick: "alice", Addr: "10.0.0.1", Action: store.ActionJoin, Channel: "#rust"},
		{ClientID: "b", Nick: "bob", Addr: "10.0.0.2", Action: store.ActionRegister},
		{ClientID: "a", Nick: "alice", Addr: "10.0.0.1", Action: store.ActionPart, Channel: "#rust", Detail: "bye"},
	}
	for i := range seed {
		ev := seed[i]
		require.NoError(t, s.RecordEvent(ctx, &ev))
		require.NotZero(t, ev.ID)
		require.False(t, ev.CreatedAt.IsZero())
	}

	recent, err := s.RecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, store.ActionPart, recent[0].Action)
	require.Equal(t, "bye", recent[0].Detail)
	require.Equal(t, "bob", recent[1].Nick)

	forAlice, err := s.EventsForClient(ctx, "a")
	require.NoError(t, err)
	require.Len(t, forAlice, 3)
	require.Equal(t, store.ActionRegister, forAlice[0].Action)
	require.Equal(t, "#rust", forAlice[1].Channel)
}

func TestRecentEventsDefaultLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		require.NoError(t, s.RecordEvent(ctx, &store.Event{ClientID: "x", Nick: "x", Action: store.ActionJoin}))
	}

	events, err := s.RecentEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 100)
}

func TestNewAppliesSchemaOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordEvent(context.Background(), &store.Event{ClientID: "a", Nick: "a", Action: store.ActionRegister}))
	require.NoError(t, s.Close())

	// Reopening must not fail on the existing schema.
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	events, err := s.RecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}
