package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone  Action = iota
	ActionLeft         // A, Left arrow - paddle/ship left
	ActionRight        // D, Right arrow - paddle/ship right
	ActionUp           // W, Up arrow - paddle raise (Pong)
	ActionDown         // S, Down arrow - paddle lower (Pong)
	ActionShoot        // Space - fire (Rivalry)
	ActionPause        // P - pause local games
	ActionQuit         // Q, Ctrl+C - leave the match
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionShoot:
		return "Shoot"
	case ActionPause:
		return "Pause"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Pointer is a normalized pointer position in [-1, 1] on both axes,
// the same space the browser client relays in mouse_move.
type Pointer struct {
	X, Y  float64
	Valid bool
}

// InputFrame represents the input state for a single player during one frame.
type InputFrame struct {
	Actions map[Action]bool
	Pointer Pointer
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether no action is set and no pointer moved.
func (f InputFrame) Empty() bool {
	for _, on := range f.Actions {
		if on {
			return false
		}
	}
	return !f.Pointer.Valid
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Pointer = Pointer{}
}

// MultiInputFrame contains input from both sides for a single frame.
// Local two-player mode fills both; online modes only fill SidePlayer.
type MultiInputFrame struct {
	BySide map[Side]InputFrame
}

// NewMultiInputFrame creates an empty multi-input frame.
func NewMultiInputFrame() MultiInputFrame {
	return MultiInputFrame{
		BySide: make(map[Side]InputFrame),
	}
}

// Side returns the input frame for one side, or an empty frame.
func (m MultiInputFrame) Side(s Side) InputFrame {
	if m.BySide == nil {
		return NewInputFrame()
	}
	if frame, ok := m.BySide[s]; ok {
		return frame
	}
	return NewInputFrame()
}

// SetSide sets the input frame for one side.
func (m *MultiInputFrame) SetSide(s Side, frame InputFrame) {
	if m.BySide == nil {
		m.BySide = make(map[Side]InputFrame)
	}
	m.BySide[s] = frame
}

// Clear resets both sides for the next frame.
func (m *MultiInputFrame) Clear() {
	for s := range m.BySide {
		frame := m.BySide[s]
		frame.Clear()
		m.BySide[s] = frame
	}
}
