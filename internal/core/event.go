package core

// RegistrationAction selects what the session registry does with a client.
type RegistrationAction int

const (
	// ActionRegister adds the client and greets it.
	ActionRegister RegistrationAction = iota
	// ActionUnregister removes the client and purges it from every channel.
	ActionUnregister
)

func (a RegistrationAction) String() string {
	switch a {
	case ActionRegister:
		return "register"
	case ActionUnregister:
		return "unregister"
	default:
		return "unknown"
	}
}

// Registration is handled by the session registry.
type Registration struct {
	Client *Client
	Action RegistrationAction
	// Reason is announced to former channel-mates on unregister.
	Reason string
}

// ChannelEvent is handled by the channel registry.
// With Leave unset it is a join of Channel.
type ChannelEvent struct {
	Client  *Client
	Channel string
	// Body is the parting message for a leave.
	Body     string
	Leave    bool
	LeaveAll bool
}

// BroadcastEvent asks the router to fan Content out to the members of Channel.
type BroadcastEvent struct {
	Content      string
	Sender       *Client
	Channel      string
	SendToSender bool
}

// Delivery is one payload for one client.
type Delivery struct {
	Client  *Client
	Content string
	// Greeting marks the welcome line, which every client must see first.
	Greeting bool
}
