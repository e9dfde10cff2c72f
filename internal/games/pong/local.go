package pong

import (
	"time"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/physics"
	"github.com/vovakirdan/rally/internal/protocol"
)

// Local is Pong for players sharing one keyboard. The bottom half is
// core.SidePlayer and the top half core.SideOpponent; in doubles each half
// adds a partner seat.
type Local struct {
	geo     Geometry
	engine  *physics.Engine
	machine *match.Machine

	paused    bool
	pauseHeld bool
}

var _ multiplayer.Controller = (*Local)(nil)

// NewLocal creates a local singles match. The engine is always the authority.
func NewLocal(cfg config.PhysicsConfig, m *match.Machine, seed int64) *Local {
	return &Local{
		geo:     GeometryOf(cfg),
		engine:  physics.New(cfg, core.RoleAuthority, seed),
		machine: m,
	}
}

// NewQuadra creates a local doubles match for four players.
func NewQuadra(cfg config.PhysicsConfig, m *match.Machine, seed int64) *Local {
	return &Local{
		geo:     GeometryOf(cfg),
		engine:  physics.NewDoubles(cfg, seed),
		machine: m,
	}
}

// Step moves every paddle and advances the ball.
func (l *Local) Step(dt time.Duration, in core.MultiInputFrame, gate multiplayer.Gate) []protocol.Message {
	seats := l.engine.Seats()
	pause := false
	for _, seat := range seats {
		pause = pause || in.Side(seat).Has(core.ActionPause)
	}
	if pause && !l.pauseHeld {
		l.paused = !l.paused
	}
	l.pauseHeld = pause

	if !gate.Playing || l.paused {
		return nil
	}
	for _, seat := range seats {
		dx, dy := axes(in.Side(seat))
		l.engine.MovePaddle(seat, dx, dy)
	}
	l.engine.Step(dt, l.machine)
	return nil
}

// Apply does nothing: a local match has no peer.
func (l *Local) Apply(protocol.Envelope) {}

// Snapshot returns the table with the bottom player's paddle at the bottom.
func (l *Local) Snapshot() multiplayer.GameSnapshot {
	s := snapshotOf(l.engine, l.geo)
	s.Paused = l.paused
	return s
}

// Engine exposes the simulation for inspection.
func (l *Local) Engine() *physics.Engine {
	return l.engine
}
