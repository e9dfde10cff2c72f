package rivalry

import (
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/protocol"
)

// Field size used when a snapshot does not carry one.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Ship is one player's ship.
type Ship struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lives int     `json:"lives"`
}

// Bullet is a shot in flight. Owner is "player1" or "player2".
type Bullet struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Owner string  `json:"owner"`
}

// Invader is one enemy of the shared wave.
type Invader struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Alive *bool   `json:"alive,omitempty"` // absent means alive
}

// IsAlive reports whether the invader should be drawn.
func (i Invader) IsAlive() bool {
	return i.Alive == nil || *i.Alive
}

// State is the payload of a Space Rivalry game_state message. Y grows
// downwards and player1 starts at the bottom.
type State struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Ships  struct {
		Player1 *Ship `json:"player1,omitempty"`
		Player2 *Ship `json:"player2,omitempty"`
	} `json:"ships"`
	Bullets  []Bullet      `json:"bullets"`
	Invaders []Invader     `json:"invaders"`
	Scores   protocol.Pair `json:"scores"`
	Winner   string        `json:"winner,omitempty"`
}

// Ship returns slot's ship, or nil.
func (s State) Ship(slot match.Slot) *Ship {
	switch slot {
	case match.Player1:
		return s.Ships.Player1
	case match.Player2:
		return s.Ships.Player2
	default:
		return nil
	}
}

// Size returns the field size, falling back to the defaults.
func (s State) Size() (float64, float64) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}
