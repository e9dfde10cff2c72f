package rivalry

import (
	"fmt"
	"math"

	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
)

// Visual characters for rendering
const (
	ShipChar      = 'A'
	EnemyShipChar = 'V'
	InvaderChar   = 'W'
	BulletChar    = '|'
)

// Snapshot is the last server state seen from the local player's side.
type Snapshot struct {
	State State
	Local match.Slot
	Seen  bool
}

// IsGameSnapshot implements the GameSnapshot interface marker.
func (Snapshot) IsGameSnapshot() {}

// Ensure Snapshot implements multiplayer.GameSnapshot
var _ multiplayer.GameSnapshot = Snapshot{}

// Draw renders the field. Player2 sees it flipped so their ship is at the
// bottom.
func (s Snapshot) Draw(dst *core.Screen) {
	if !s.Seen || dst.Width() < 2 || dst.Height() < 3 {
		return
	}

	for _, inv := range s.State.Invaders {
		if inv.IsAlive() {
			s.plot(dst, inv.X, inv.Y, InvaderChar)
		}
	}
	for _, b := range s.State.Bullets {
		s.plot(dst, b.X, b.Y, BulletChar)
	}
	if ship := s.State.Ship(s.Local.Other()); ship != nil {
		s.plot(dst, ship.X, ship.Y, EnemyShipChar)
	}
	if ship := s.State.Ship(s.Local); ship != nil {
		s.plot(dst, ship.X, ship.Y, ShipChar)
	}

	mine, theirs := s.State.Scores.Player1, s.State.Scores.Player2
	if s.Local == match.Player2 {
		mine, theirs = theirs, mine
	}
	dst.DrawText(0, 0, fmt.Sprintf("You %d : %d Them", mine, theirs))
	if ship := s.State.Ship(s.Local); ship != nil {
		lives := fmt.Sprintf("Lives %d", ship.Lives)
		dst.DrawText(dst.Width()-len(lives), 0, lives)
	}
}

// plot maps field coordinates onto the screen below the score row.
func (s Snapshot) plot(dst *core.Screen, x, y float64, r rune) {
	w, h := s.State.Size()
	if s.Local == match.Player2 {
		y = h - y
	}
	cx := x / w * float64(dst.Width()-1)
	cy := 1 + y/h*float64(dst.Height()-2)
	dst.Set(int(math.Round(cx)), int(math.Round(cy)), r)
}
