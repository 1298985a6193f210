package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*Router, *queues) {
	logger := zerolog.Nop()
	q := newQueues(false)
	return newRouter(DefaultChannels(), q, &logger, nil), q
}

func drainDeliveries(q *queues) map[string][]string {
	out := make(map[string][]string)
	for {
		op, ok := q.postman.TryPop()
		if !ok {
			return out
		}
		out[op.delivery.Client.Nick] = append(out[op.delivery.Client.Nick], op.delivery.Content)
	}
}

func TestRouterExcludesSender(t *testing.T) {
	r, q := newTestRouter()
	alice := NewClient("a", "alice", "h", nil)
	bob := NewClient("b", "bob", "h", nil)
	carol := NewClient("c", "carol", "h", nil)

	for _, c := range []*Client{alice, bob, carol} {
		r.apply(&membershipChange{channel: "#rust", client: c, joined: true})
	}

	r.fanOut(&BroadcastEvent{Content: "msg", Sender: alice, Channel: "#rust"})
	got := drainDeliveries(q)
	require.NotContains(t, got, "alice")
	require.Equal(t, []string{"msg"}, got["bob"])
	require.Equal(t, []string{"msg"}, got["carol"])

	r.fanOut(&BroadcastEvent{Content: "echo", Sender: alice, Channel: "#RUST", SendToSender: true})
	got = drainDeliveries(q)
	require.Len(t, got, 3)
	require.Equal(t, []string{"echo"}, got["alice"])
}

func TestRouterSenderMatchedByID(t *testing.T) {
	r, q := newTestRouter()
	alice := NewClient("a", "alice", "h", nil)
	impostor := NewClient("x", "alice", "h", nil)

	r.apply(&membershipChange{channel: "#java", client: alice, joined: true})
	r.apply(&membershipChange{channel: "#java", client: impostor, joined: true})

	r.fanOut(&BroadcastEvent{Content: "msg", Sender: alice, Channel: "#java"})

	op, ok := q.postman.TryPop()
	require.True(t, ok)
	require.Equal(t, "x", op.delivery.Client.ID)
	_, ok = q.postman.TryPop()
	require.False(t, ok)
}

func TestRouterMembershipRemoval(t *testing.T) {
	r, q := newTestRouter()
	alice := NewClient("a", "alice", "h", nil)
	bob := NewClient("b", "bob", "h", nil)

	r.apply(&membershipChange{channel: "#rust", client: alice, joined: true})
	r.apply(&membershipChange{channel: "#rust", client: bob, joined: true})
	r.apply(&membershipChange{channel: "#rust", client: bob})

	r.fanOut(&BroadcastEvent{Content: "left", Sender: bob, Channel: "#rust"})
	require.Equal(t, map[string][]string{"alice": {"left"}}, drainDeliveries(q))
}

func TestRouterUnknownChannel(t *testing.T) {
	r, q := newTestRouter()
	alice := NewClient("a", "alice", "h", nil)

	r.apply(&membershipChange{channel: "#nope", client: alice, joined: true})
	r.fanOut(&BroadcastEvent{Content: "msg", Sender: alice, Channel: "#nope", SendToSender: true})
	require.Zero(t, q.postman.Len())
}
