package channel

import "github.com/vovakirdan/rally/internal/protocol"

// State is the connection state shown to the user and used to gate the
// simulation.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateReconnecting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Event is something the channel reports to its owner.
type Event interface {
	channelEvent()
}

// StateChanged is emitted on every connection state transition.
type StateChanged struct {
	State   State
	Message string // user-facing text, may be empty
}

func (StateChanged) channelEvent() {}

// Received carries one decoded inbound message.
type Received struct {
	Envelope protocol.Envelope
}

func (Received) channelEvent() {}

// Notice is a non-fatal, user-facing message such as a transport error.
type Notice struct {
	Message string
}

func (Notice) channelEvent() {}
