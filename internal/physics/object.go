package physics

import (
	"sync/atomic"

	"github.com/vovakirdan/rally/internal/core"
)

// Kind classifies a body for collision response.
type Kind int

const (
	KindBall Kind = iota
	KindPaddle
	KindTable
	KindNet
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindPaddle:
		return "paddle"
	case KindTable:
		return "table"
	case KindNet:
		return "net"
	default:
		return "unknown"
	}
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// GameObject is a simulated rigid body. Kinematic bodies move only by their
// velocity and are never pulled by gravity.
type GameObject struct {
	ID        uint64
	Kind      Kind
	Side      core.Side // paddles only
	Position  core.Vec3
	Velocity  core.Vec3
	Mass      float64
	Half      core.Vec3 // half extents of the bounding box
	Kinematic bool
}

func newObject(kind Kind, pos, half core.Vec3, mass float64) *GameObject {
	return &GameObject{
		ID:        nextID(),
		Kind:      kind,
		Position:  pos,
		Mass:      mass,
		Half:      half,
		Kinematic: kind != KindBall,
	}
}

// Bounds returns the current axis-aligned bounding box.
func (o *GameObject) Bounds() core.Box3 {
	return core.BoxAround(o.Position, o.Half)
}

// ApplyImpulse adds force/mass to the velocity. A non-positive mass or a
// non-finite result leaves the velocity untouched and reports false.
func (o *GameObject) ApplyImpulse(force core.Vec3) bool {
	if o.Mass <= 0 || !force.IsFinite() {
		return false
	}
	v := o.Velocity.Add(force.Scale(1 / o.Mass))
	if !v.IsFinite() {
		return false
	}
	o.Velocity = v
	return true
}

// pairKey identifies an unordered pair of bodies.
type pairKey struct {
	lo, hi uint64
}

func keyOf(a, b *GameObject) pairKey {
	if a.ID < b.ID {
		return pairKey{a.ID, b.ID}
	}
	return pairKey{b.ID, a.ID}
}
