package pong

import (
	"math"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/physics"
)

// Visual characters for rendering
const (
	PaddleChar = '█'
	BallChar   = '●'
	LobChar    = '○' // ball high above the net
	NetChar    = '┄'
	EdgeChar   = '·'
)

// Geometry is the part of the table the renderer needs.
type Geometry struct {
	TableHalfWidth  float64
	TableHalfLength float64
	PaddleHalfWidth float64
	NetHeight       float64
	ViewHalfWidth   float64 // x extent drawn on screen
	ViewHalfLength  float64 // z extent drawn on screen
}

// GeometryOf derives the drawn area from the physics config.
func GeometryOf(cfg config.PhysicsConfig) Geometry {
	return Geometry{
		TableHalfWidth:  cfg.Table.HalfWidth,
		TableHalfLength: cfg.Table.HalfLength,
		PaddleHalfWidth: cfg.Paddle.Width / 2,
		NetHeight:       cfg.Table.Height + cfg.Net.Height,
		ViewHalfWidth:   math.Max(cfg.Table.HalfWidth, cfg.Paddle.MaxReachX) + cfg.Paddle.Width/2,
		ViewHalfLength:  cfg.Paddle.Distance + 1,
	}
}

// Snapshot is one rendered frame of a Pong table, seen from the local
// player's end: the local paddle at the bottom.
type Snapshot struct {
	Geometry Geometry
	Ball     core.Vec3
	Player   core.Vec3
	Opponent core.Vec3
	Partners []core.Vec3 // doubles only
	Rally    physics.Rally
	Paused   bool
}

// IsGameSnapshot implements the GameSnapshot interface marker.
func (Snapshot) IsGameSnapshot() {}

// Ensure Snapshot implements multiplayer.GameSnapshot
var _ multiplayer.GameSnapshot = Snapshot{}

func snapshotOf(e *physics.Engine, g Geometry) Snapshot {
	s := Snapshot{
		Geometry: g,
		Ball:     e.Ball().Position,
		Player:   e.Paddle(core.SidePlayer).Position,
		Opponent: e.Paddle(core.SideOpponent).Position,
		Rally:    e.Rally(),
	}
	for _, seat := range e.Seats() {
		if seat == core.SidePlayerPartner || seat == core.SideOpponentPartner {
			s.Partners = append(s.Partners, e.Paddle(seat).Position)
		}
	}
	return s
}

// Draw renders a top-down view of the table.
func (s Snapshot) Draw(dst *core.Screen) {
	g := s.Geometry
	if dst.Width() < 3 || dst.Height() < 3 || g.ViewHalfWidth <= 0 || g.ViewHalfLength <= 0 {
		return
	}

	// Table edges
	left, top := s.cell(dst, -g.TableHalfWidth, -g.TableHalfLength)
	right, bottom := s.cell(dst, g.TableHalfWidth, g.TableHalfLength)
	dst.DrawBox(core.NewRect(left, top, right-left+1, bottom-top+1))

	// Net
	_, netY := s.cell(dst, 0, 0)
	dst.DrawHLine(left+1, netY, right-left-1, NetChar)

	// Side lines beyond the table ends
	for _, z := range []float64{-g.ViewHalfLength, g.ViewHalfLength} {
		_, y := s.cell(dst, 0, z)
		dst.DrawHLine(0, y, dst.Width(), EdgeChar)
	}

	s.drawPaddle(dst, s.Opponent)
	s.drawPaddle(dst, s.Player)
	for _, pos := range s.Partners {
		s.drawPaddle(dst, pos)
	}

	bx, by := s.cell(dst, s.Ball.X, s.Ball.Z)
	ball := BallChar
	if s.Ball.Y > 2*g.NetHeight {
		ball = LobChar
	}
	dst.Set(bx, by, ball)

	if s.Paused {
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

func (s Snapshot) drawPaddle(dst *core.Screen, pos core.Vec3) {
	x0, y := s.cell(dst, pos.X-s.Geometry.PaddleHalfWidth, pos.Z)
	x1, _ := s.cell(dst, pos.X+s.Geometry.PaddleHalfWidth, pos.Z)
	dst.DrawHLine(x0, y, max(1, x1-x0+1), PaddleChar)
}

// cell maps table coordinates onto the screen. The opponent's end is at
// the top.
func (s Snapshot) cell(dst *core.Screen, x, z float64) (int, int) {
	g := s.Geometry
	cx := (x + g.ViewHalfWidth) / (2 * g.ViewHalfWidth) * float64(dst.Width()-1)
	cy := (z + g.ViewHalfLength) / (2 * g.ViewHalfLength) * float64(dst.Height()-1)
	return int(math.Round(cx)), int(math.Round(cy))
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))
	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}

