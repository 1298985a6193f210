package core

import (
	"sort"
	"strings"
)

// ChannelSpec describes one channel of the fixed startup set.
type ChannelSpec struct {
	Name        string
	Description string
}

// DefaultChannels is the reference channel set.
func DefaultChannels() []ChannelSpec {
	return []ChannelSpec{
		{Name: "#rust", Description: "A place to talk about Rust"},
		{Name: "#java", Description: "A place to talk about Java"},
	}
}

// channelKey normalizes a channel name for lookups; names are case-insensitive.
func channelKey(name string) string {
	return strings.ToLower(name)
}

// Channel groups clients subscribed to the same conversation.
type Channel struct {
	Name        string
	Description string
	members     map[string]*Client
}

// NewChannel constructs a channel with no members.
func NewChannel(name, description string) *Channel {
	return &Channel{
		Name:        name,
		Description: description,
		members:     make(map[string]*Client),
	}
}

// Add inserts a client. Returns true if newly added.
func (ch *Channel) Add(c *Client) bool {
	if _, exists := ch.members[c.ID]; exists {
		return false
	}
	ch.members[c.ID] = c
	return true
}

// Remove deletes a client. Returns true if removed.
func (ch *Channel) Remove(c *Client) bool {
	if _, exists := ch.members[c.ID]; !exists {
		return false
	}
	delete(ch.members, c.ID)
	return true
}

// Has reports whether c is a member.
func (ch *Channel) Has(c *Client) bool {
	_, ok := ch.members[c.ID]
	return ok
}

// Len returns the member count.
func (ch *Channel) Len() int {
	return len(ch.members)
}

// Nicks returns the member nicknames, sorted.
func (ch *Channel) Nicks() []string {
	nicks := make([]string, 0, len(ch.members))
	for _, c := range ch.members {
		nicks = append(nicks, c.Nick)
	}
	sort.Strings(nicks)
	return nicks
}
