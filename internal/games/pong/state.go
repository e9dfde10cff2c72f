package pong

import (
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/protocol"
)

// State is the payload of a Pong game_state message. Positions are in the
// authority's (player1's) view of the table.
type State struct {
	Ball          *protocol.Vec3 `json:"ball_position,omitempty"`
	Player1Paddle *protocol.Vec3 `json:"player1_paddle,omitempty"`
	Player2Paddle *protocol.Vec3 `json:"player2_paddle,omitempty"`
	Winner        string         `json:"winner,omitempty"`
}

// Paddle returns the paddle of slot, or nil when the snapshot omits it.
func (s State) Paddle(slot match.Slot) *protocol.Vec3 {
	switch slot {
	case match.Player1:
		return s.Player1Paddle
	case match.Player2:
		return s.Player2Paddle
	default:
		return nil
	}
}
