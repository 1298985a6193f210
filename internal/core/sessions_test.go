package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSessionRegistry() (*SessionRegistry, *queues) {
	logger := zerolog.Nop()
	q := newQueues(true)
	return newSessionRegistry(testFormat, "Welcome", q, &logger, nil), q
}

func TestSessionRegistryRegisterGreets(t *testing.T) {
	s, q := newTestSessionRegistry()
	alice := NewClient("a", "alice", "h", nil)

	s.handle(Registration{Client: alice, Action: ActionRegister})
	s.handle(Registration{Client: alice, Action: ActionRegister})

	op, ok := q.postman.TryPop()
	require.True(t, ok)
	require.True(t, op.delivery.Greeting)
	require.Equal(t, testFormat.Welcome("alice", "Welcome"), op.delivery.Content)
	require.Zero(t, q.postman.Len(), "duplicate register must not greet twice")

	require.Len(t, s.snapshot(), 1)
	require.Equal(t, 1, q.audit.Len())
}

func TestSessionRegistryUnregisterCascades(t *testing.T) {
	s, q := newTestSessionRegistry()
	alice := NewClient("a", "alice", "h", nil)
	s.handle(Registration{Client: alice, Action: ActionRegister})
	q.postman.TryPop()

	s.handle(Registration{Client: alice, Action: ActionUnregister, Reason: "quit"})

	require.True(t, alice.Gone())
	require.Empty(t, s.snapshot())

	op, ok := q.channels.TryPop()
	require.True(t, ok)
	require.True(t, op.ev.LeaveAll)
	require.Equal(t, "quit", op.ev.Body)
	require.True(t, op.ev.Client.Same(alice))

	release, ok := q.postman.TryPop()
	require.True(t, ok)
	require.Same(t, alice, release.release)

	// Unregistering again leaves the registry as it is.
	s.handle(Registration{Client: alice, Action: ActionUnregister})
	require.Empty(t, s.snapshot())
	require.Equal(t, 2, q.audit.Len())
}
