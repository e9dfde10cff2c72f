package pong

import (
	"time"

	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/physics"
	"github.com/vovakirdan/rally/internal/protocol"
)

// maxSteer caps how far held keys move the paddle in one frame.
const maxSteer = 100 * time.Millisecond

// Remote plays one side of an online Pong match. The authority simulates
// the ball and broadcasts it; a spectator only mirrors what it receives.
// Both relay their own paddle as a normalized pointer.
type Remote struct {
	cfg     config.PhysicsConfig
	geo     Geometry
	engine  *physics.Engine
	machine *match.Machine
	policy  authority.Policy

	pointer   core.Pointer // local paddle, normalized
	sent      core.Pointer // last pointer relayed to the peer
	lastMouse core.Pointer // last pointer seen from the terminal
}

var _ multiplayer.Controller = (*Remote)(nil)

// NewRemote creates the controller. The machine receives the points the
// engine awards.
func NewRemote(cfg config.PhysicsConfig, m *match.Machine, p authority.Policy, seed int64) *Remote {
	r := &Remote{
		cfg:     cfg,
		geo:     GeometryOf(cfg),
		engine:  physics.New(cfg, p.Role(), seed),
		machine: m,
		policy:  p,
		pointer: core.Pointer{Valid: true},
	}
	r.sent = r.pointer
	r.engine.SetPaddleFromPointer(core.SidePlayer, 0, 0)
	return r
}

// Engine exposes the simulation for inspection.
func (r *Remote) Engine() *physics.Engine {
	return r.engine
}

// Step moves the local paddle, relays it when it changed and, on the
// authority, advances the ball. Nothing is simulated or sent unless the
// channel is connected and the match is in progress.
func (r *Remote) Step(dt time.Duration, in core.MultiInputFrame, gate multiplayer.Gate) []protocol.Message {
	if !gate.Live || !gate.Playing {
		return nil
	}

	var msgs []protocol.Message
	r.steer(dt, in.Side(core.SidePlayer))
	if r.pointer != r.sent {
		r.sent = r.pointer
		msgs = append(msgs, protocol.MouseMove{MousePosition: protocol.Vec2{X: r.pointer.X, Y: r.pointer.Y}})
	}

	if !r.policy.Simulates() {
		return msgs
	}
	r.engine.SuppressScoring(gate.Degraded)
	r.engine.Step(dt, r.machine)
	if ball, ok := r.policy.Ball(r.engine.Ball().Position); ok {
		msgs = append(msgs, ball)
	}
	return msgs
}

// steer applies a new mouse position, or moves the pointer with held keys.
func (r *Remote) steer(dt time.Duration, frame core.InputFrame) {
	if frame.Pointer.Valid && frame.Pointer != r.lastMouse {
		r.lastMouse = frame.Pointer
		r.pointer = core.Pointer{
			X:     core.ClampF(frame.Pointer.X, -1, 1),
			Y:     core.ClampF(frame.Pointer.Y, -1, 1),
			Valid: true,
		}
	}

	dx, dy := axes(frame)
	if dx != 0 || dy != 0 {
		secs := min(dt, maxSteer).Seconds()
		p := r.cfg.Paddle
		if p.MaxReachX > 0 {
			r.pointer.X = core.ClampF(r.pointer.X+dx*p.Speed*secs/p.MaxReachX, -1, 1)
		}
		if span := (p.MaxY - p.MinY) / 2; span > 0 {
			r.pointer.Y = core.ClampF(r.pointer.Y+dy*p.Speed*secs/span, -1, 1)
		}
	}
	r.engine.SetPaddleFromPointer(core.SidePlayer, r.pointer.X, r.pointer.Y)
}

// Apply mirrors the peer's paddle and, on a spectator, the ball.
func (r *Remote) Apply(env protocol.Envelope) {
	switch msg := env.Message.(type) {
	case protocol.MouseMove:
		r.engine.SetPaddleFromPointer(core.SideOpponent, msg.MousePosition.X, msg.MousePosition.Y)

	case protocol.BallPosition:
		if !r.policy.Simulates() {
			r.engine.SetBall(r.toLocal(msg.BallPosition.Core()))
		}

	case protocol.GameState:
		if r.policy.Simulates() {
			return
		}
		var st State
		if err := msg.Decode(&st); err != nil {
			return
		}
		if st.Ball != nil {
			r.engine.SetBall(r.toLocal(st.Ball.Core()))
		}
		if p := st.Paddle(r.machine.Identity().Local.Other()); p != nil {
			r.engine.SetPaddle(core.SideOpponent, r.toLocal(p.Core()))
		}
	}
}

// toLocal converts wire coordinates, which are the authority's view, into
// this peer's view.
func (r *Remote) toLocal(v core.Vec3) core.Vec3 {
	if r.policy.Simulates() {
		return v
	}
	return mirror(v)
}

// Snapshot returns the table from the local player's end.
func (r *Remote) Snapshot() multiplayer.GameSnapshot {
	return snapshotOf(r.engine, r.geo)
}

// mirror turns the table around: the other end's view of the same point.
func mirror(v core.Vec3) core.Vec3 {
	return core.V3(-v.X, v.Y, -v.Z)
}

// axes reads held movement keys as directions in [-1, 1].
func axes(frame core.InputFrame) (dx, dy float64) {
	if frame.Has(core.ActionLeft) {
		dx--
	}
	if frame.Has(core.ActionRight) {
		dx++
	}
	if frame.Has(core.ActionDown) {
		dy--
	}
	if frame.Has(core.ActionUp) {
		dy++
	}
	return dx, dy
}
