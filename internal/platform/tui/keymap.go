package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/rally/internal/core"
)

// KeyMap defines the key bindings for a match.
//
// Online both movement clusters steer the local paddle or ship. With two
// local seats the arrows belong to the bottom player and WASD to the top
// player. With four, IJKL adds the bottom partner and TFGH the top partner.
type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	AltLeft  key.Binding
	AltRight key.Binding
	AltUp    key.Binding
	AltDown  key.Binding

	MateLeft  key.Binding
	MateRight key.Binding
	MateUp    key.Binding
	MateDown  key.Binding

	AltMateLeft  key.Binding
	AltMateRight key.Binding
	AltMateUp    key.Binding
	AltMateDown  key.Binding

	Shoot key.Binding
	Pause key.Binding
	Quit  key.Binding

	seats int
}

// DefaultKeyMap returns the default bindings for the number of players
// sharing the keyboard. Zero or one means online play.
func DefaultKeyMap(seats int) KeyMap {
	k := KeyMap{
		Left:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "move")),
		Right:        key.NewBinding(key.WithKeys("right")),
		Up:           key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "raise/lower")),
		Down:         key.NewBinding(key.WithKeys("down")),
		AltLeft:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a/d", "move")),
		AltRight:     key.NewBinding(key.WithKeys("d")),
		AltUp:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w/s", "raise/lower")),
		AltDown:      key.NewBinding(key.WithKeys("s")),
		MateLeft:     key.NewBinding(key.WithKeys("j"), key.WithHelp("ijkl", "bottom partner")),
		MateRight:    key.NewBinding(key.WithKeys("l")),
		MateUp:       key.NewBinding(key.WithKeys("i")),
		MateDown:     key.NewBinding(key.WithKeys("k")),
		AltMateLeft:  key.NewBinding(key.WithKeys("f"), key.WithHelp("tfgh", "top partner")),
		AltMateRight: key.NewBinding(key.WithKeys("h")),
		AltMateUp:    key.NewBinding(key.WithKeys("t")),
		AltMateDown:  key.NewBinding(key.WithKeys("g")),
		Shoot:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "shoot")),
		Pause:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Quit:         key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "leave")),
		seats:        seats,
	}
	if seats >= 2 {
		k.Left.SetHelp("←/→", "bottom")
		k.AltLeft.SetHelp("a/d", "top")
		k.Shoot.SetEnabled(false)
	} else {
		k.Pause.SetEnabled(false)
	}
	if seats < 4 {
		for _, b := range []*key.Binding{
			&k.MateLeft, &k.MateRight, &k.MateUp, &k.MateDown,
			&k.AltMateLeft, &k.AltMateRight, &k.AltMateUp, &k.AltMateDown,
		} {
			b.SetEnabled(false)
		}
	}
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	switch {
	case k.seats >= 4:
		return []key.Binding{k.Left, k.MateLeft, k.AltLeft, k.AltMateLeft, k.Pause, k.Quit}
	case k.seats >= 2:
		return []key.Binding{k.Left, k.Up, k.AltLeft, k.AltUp, k.Pause, k.Quit}
	}
	return []key.Binding{k.Left, k.Up, k.Shoot, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Frame translates one key press into an input frame.
// ok is false when the key is not bound to a game action.
func (k KeyMap) Frame(msg tea.KeyMsg) (in core.MultiInputFrame, ok bool) {
	side, action := k.lookup(msg)
	if action == core.ActionNone {
		return in, false
	}
	f := core.NewInputFrame()
	f.Set(action)
	in = core.NewMultiInputFrame()
	in.SetSide(side, f)
	return in, true
}

func (k KeyMap) lookup(msg tea.KeyMsg) (core.Side, core.Action) {
	alt := core.SidePlayer
	if k.seats >= 2 {
		alt = core.SideOpponent
	}
	switch {
	case key.Matches(msg, k.Left):
		return core.SidePlayer, core.ActionLeft
	case key.Matches(msg, k.Right):
		return core.SidePlayer, core.ActionRight
	case key.Matches(msg, k.Up):
		return core.SidePlayer, core.ActionUp
	case key.Matches(msg, k.Down):
		return core.SidePlayer, core.ActionDown
	case key.Matches(msg, k.AltLeft):
		return alt, core.ActionLeft
	case key.Matches(msg, k.AltRight):
		return alt, core.ActionRight
	case key.Matches(msg, k.AltUp):
		return alt, core.ActionUp
	case key.Matches(msg, k.AltDown):
		return alt, core.ActionDown
	case key.Matches(msg, k.MateLeft):
		return core.SidePlayerPartner, core.ActionLeft
	case key.Matches(msg, k.MateRight):
		return core.SidePlayerPartner, core.ActionRight
	case key.Matches(msg, k.MateUp):
		return core.SidePlayerPartner, core.ActionUp
	case key.Matches(msg, k.MateDown):
		return core.SidePlayerPartner, core.ActionDown
	case key.Matches(msg, k.AltMateLeft):
		return core.SideOpponentPartner, core.ActionLeft
	case key.Matches(msg, k.AltMateRight):
		return core.SideOpponentPartner, core.ActionRight
	case key.Matches(msg, k.AltMateUp):
		return core.SideOpponentPartner, core.ActionUp
	case key.Matches(msg, k.AltMateDown):
		return core.SideOpponentPartner, core.ActionDown
	case key.Matches(msg, k.Shoot):
		return core.SidePlayer, core.ActionShoot
	case key.Matches(msg, k.Pause):
		return core.SidePlayer, core.ActionPause
	}
	return core.SideNone, core.ActionNone
}

// PointerAt normalizes a terminal cell inside area to the [-1, 1] pointer
// space. X grows to the right and Y grows upwards. Cells outside area give
// an invalid pointer.
func PointerAt(x, y int, area core.Rect) core.Pointer {
	if !area.Contains(x, y) || area.W < 2 || area.H < 2 {
		return core.Pointer{}
	}
	return core.Pointer{
		X:     float64(x-area.X)/float64(area.W-1)*2 - 1,
		Y:     1 - float64(y-area.Y)/float64(area.H-1)*2,
		Valid: true,
	}
}

// PointerFrame wraps a pointer for the local player.
func PointerFrame(p core.Pointer) core.MultiInputFrame {
	f := core.NewInputFrame()
	f.Pointer = p
	in := core.NewMultiInputFrame()
	in.SetSide(core.SidePlayer, f)
	return in
}
