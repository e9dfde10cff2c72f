package multiplayer

import (
	"time"

	"github.com/vovakirdan/rally/internal/core"
)

// DefaultHold is how long a key stays pressed after its last repeat.
// Terminals report key presses and auto-repeats but never releases.
const DefaultHold = 150 * time.Millisecond

// heldInput turns a stream of key presses into held-key state.
type heldInput struct {
	hold    time.Duration
	pressed map[core.Side]map[core.Action]time.Time
	pointer map[core.Side]core.Pointer
}

func newHeldInput(hold time.Duration) *heldInput {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &heldInput{
		hold:    hold,
		pressed: make(map[core.Side]map[core.Action]time.Time),
		pointer: make(map[core.Side]core.Pointer),
	}
}

// merge records the presses and pointer moves of one input event.
func (h *heldInput) merge(in core.MultiInputFrame, now time.Time) {
	for side, frame := range in.BySide {
		for action, on := range frame.Actions {
			if !on {
				continue
			}
			if h.pressed[side] == nil {
				h.pressed[side] = make(map[core.Action]time.Time)
			}
			h.pressed[side][action] = now
		}
		if frame.Pointer.Valid {
			h.pointer[side] = frame.Pointer
		}
	}
}

// frame returns the keys still held at now plus the last pointer per side.
func (h *heldInput) frame(now time.Time) core.MultiInputFrame {
	out := core.NewMultiInputFrame()
	for side, actions := range h.pressed {
		frame := core.NewInputFrame()
		for action, at := range actions {
			if now.Sub(at) < h.hold {
				frame.Set(action)
			} else {
				delete(actions, action)
			}
		}
		out.SetSide(side, frame)
	}
	for side, p := range h.pointer {
		frame := out.Side(side)
		frame.Pointer = p
		out.SetSide(side, frame)
	}
	return out
}
