// Package rivalry implements the Space Rivalry client. The server runs the
// whole simulation; the client relays held keys at a fixed rate and draws
// the snapshots it receives.
package rivalry

import (
	"time"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/protocol"
)

// DefaultInputRate is used when the configured rate is not positive.
const DefaultInputRate = 20

var bindings = []struct {
	action core.Action
	input  string
}{
	{core.ActionLeft, protocol.InputLeft},
	{core.ActionRight, protocol.InputRight},
	{core.ActionShoot, protocol.InputShoot},
}

// Client relays input and mirrors server snapshots.
type Client struct {
	interval time.Duration
	since    time.Duration
	local    match.Slot
	state    State
	seen     bool
}

var _ multiplayer.Controller = (*Client)(nil)

// NewClient creates a client for the player in slot local.
func NewClient(cfg config.RivalryConfig, local match.Slot) *Client {
	rate := cfg.InputRate
	if rate <= 0 {
		rate = DefaultInputRate
	}
	interval := time.Second / time.Duration(rate)
	return &Client{interval: interval, since: interval, local: local}
}

// Step sends one player_input per held key, at most once per interval,
// and only while connected and playing. The first press is sent at once.
func (c *Client) Step(dt time.Duration, in core.MultiInputFrame, gate multiplayer.Gate) []protocol.Message {
	frame := in.Side(core.SidePlayer)
	var msgs []protocol.Message
	for _, b := range bindings {
		if frame.Has(b.action) {
			msgs = append(msgs, protocol.PlayerInput{Input: b.input})
		}
	}
	if len(msgs) == 0 || !gate.Live || !gate.Playing {
		c.since = c.interval
		return nil
	}

	c.since += dt
	if c.since < c.interval {
		return nil
	}
	c.since = 0
	return msgs
}

// Apply takes a server snapshot.
func (c *Client) Apply(env protocol.Envelope) {
	msg, ok := env.Message.(protocol.GameState)
	if !ok {
		return
	}
	var st State
	if err := msg.Decode(&st); err != nil {
		return
	}
	c.state = st
	c.seen = true
}

// State returns the last snapshot received.
func (c *Client) State() (State, bool) {
	return c.state, c.seen
}

// Snapshot returns the field with the local ship at the bottom.
func (c *Client) Snapshot() multiplayer.GameSnapshot {
	return Snapshot{State: c.state, Local: c.local, Seen: c.seen}
}
