package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/multiplayer"
)

// Rows taken by the status bar, the notice line and the help line.
const chromeRows = 3

// Runtime is the part of *multiplayer.Runtime the model drives.
type Runtime interface {
	Events() <-chan multiplayer.Event
	Done() <-chan struct{}
	SendInput(in core.MultiInputFrame)
	Stop()
}

var _ Runtime = (*multiplayer.Runtime)(nil)

// runtimeDoneMsg is sent once the runtime has stopped.
type runtimeDoneMsg struct{}

// Model is the Bubble Tea model for one match.
type Model struct {
	rt     Runtime
	keys   KeyMap
	help   help.Model
	spin   spinner.Model
	screen *core.Screen

	width  int
	height int

	status   multiplayer.Status
	snapshot multiplayer.GameSnapshot
	ended    *multiplayer.MatchEndedEvent
	stopped  bool
	quitting bool
}

// NewModel creates a model bound to rt. seats is the number of local players
// sharing the keyboard, zero online.
func NewModel(rt Runtime, seats, width, height int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		rt:     rt,
		keys:   DefaultKeyMap(seats),
		help:   help.New(),
		spin:   s,
		screen: core.NewScreen(0, 0),
	}
	m.resize(width, height)
	return m
}

// Init starts listening to the runtime.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.rt), m.spin.Tick)
}

// waitForEvent returns a command that waits for the next runtime event.
// Buffered events are delivered before the done signal.
func waitForEvent(rt Runtime) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-rt.Events():
			return ev
		default:
		}
		select {
		case ev := <-rt.Events():
			return ev
		case <-rt.Done():
			return runtimeDoneMsg{}
		}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.rt.Stop()
			return m, tea.Quit
		}
		if in, ok := m.keys.Frame(msg); ok && !m.stopped {
			m.rt.SendInput(in)
		}
		return m, nil

	case tea.MouseMsg:
		if p := PointerAt(msg.X, msg.Y, m.board()); p.Valid && !m.stopped {
			m.rt.SendInput(PointerFrame(p))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case multiplayer.FrameEvent:
		m.status = msg.Status
		m.snapshot = msg.Snapshot
		return m, waitForEvent(m.rt)

	case multiplayer.MatchEndedEvent:
		m.ended = &msg
		return m, waitForEvent(m.rt)

	case runtimeDoneMsg:
		m.stopped = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	b := m.board()
	m.screen.Resize(b.W, b.H)
}

// board is the screen area the table is drawn in.
func (m Model) board() core.Rect {
	return core.NewRect(0, 1, max(m.width, 0), max(m.height-chromeRows, 0))
}

// Ended returns the match end event, if one was seen.
func (m Model) Ended() (multiplayer.MatchEndedEvent, bool) {
	if m.ended == nil {
		return multiplayer.MatchEndedEvent{}, false
	}
	return *m.ended, true
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	b := m.board()
	var body string
	switch {
	case m.ended != nil:
		body = renderResult(m.status, *m.ended, b.W, b.H)
	case m.snapshot != nil:
		m.screen.Clear()
		m.snapshot.Draw(m.screen)
		body = RenderScreen(m.screen)
	default:
		body = lipgloss.Place(b.W, b.H, lipgloss.Center, lipgloss.Center,
			m.spin.View()+" waiting for the match")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatus(m.status, m.spin.View(), m.width),
		body,
		renderMessage(m.status, m.width),
		dimStyle.Render(m.help.View(m.keys)),
	)
}

// Run drives rt in the background and shows it until the user leaves.
// It returns once the runtime has fully stopped.
func Run(ctx context.Context, rt *multiplayer.Runtime, seats, width, height int) (Model, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- rt.Run(ctx) }()

	p := tea.NewProgram(
		NewModel(rt, seats, width, height),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()

	rt.Stop()
	if runErr := <-errc; err == nil {
		err = runErr
	}

	m, _ := final.(Model)
	return m, err
}
