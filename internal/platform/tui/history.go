package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/rally/internal/registry"
	"github.com/vovakirdan/rally/internal/storage"
)

const maxHistory = 100

// HistoryStore is the part of *storage.Store the history screen reads.
type HistoryStore interface {
	PlayerHistory(username string, limit int) ([]storage.MatchRecord, error)
	RecentMatches(limit int) ([]storage.MatchRecord, error)
}

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	Quit     key.Binding
}

func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextMode, k.PrevMode, k.Quit}
}

func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		NextMode: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next mode")),
		PrevMode: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev mode")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// HistoryModel lists finished matches, filtered by mode.
type HistoryModel struct {
	store    HistoryStore
	username string // empty lists every local player

	tabs    []string // "" is every mode
	tab     int
	records []storage.MatchRecord
	err     error

	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates the history screen.
func NewHistoryModel(store HistoryStore, username string, width, height int) HistoryModel {
	tabs := []string{""}
	for _, info := range registry.List() {
		tabs = append(tabs, info.ID)
	}

	m := HistoryModel{
		store:    store,
		username: username,
		tabs:     tabs,
		help:     help.New(),
		keys:     DefaultHistoryKeyMap(),
		width:    width,
		height:   height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Mode", Width: 11},
		{Title: "Opponent", Width: 14},
		{Title: "Sets", Width: 6},
		{Title: "Result", Width: 9},
		{Title: "Time", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load reads the matches for the current tab.
func (m *HistoryModel) load() {
	m.records, m.err = nil, nil
	if m.store == nil {
		m.updateRows()
		return
	}

	var all []storage.MatchRecord
	if m.username != "" {
		all, m.err = m.store.PlayerHistory(m.username, maxHistory)
	} else {
		all, m.err = m.store.RecentMatches(maxHistory)
	}
	mode := m.tabs[m.tab]
	for _, r := range all {
		if mode == "" || r.Mode == mode {
			m.records = append(m.records, r)
		}
	}
	m.updateRows()
}

func (m *HistoryModel) updateRows() {
	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		rows[i] = table.Row{
			r.CreatedAt.Format("Jan 02 15:04"),
			r.Mode,
			r.Opponent,
			fmt.Sprintf("%d-%d", r.Score1, r.Score2),
			outcome(r),
			fmt.Sprintf("%d:%02d", r.Duration/60, r.Duration%60),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func outcome(r storage.MatchRecord) string {
	switch {
	case r.Winner == "":
		return "-"
	case r.Won() && r.EndReason == "forfeit":
		return "won (ff)"
	case r.Won():
		return "won"
	case r.EndReason == "forfeit":
		return "lost (ff)"
	default:
		return "lost"
	}
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextMode):
			m.tab = (m.tab + 1) % len(m.tabs)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevMode):
			m.tab = (m.tab + len(m.tabs) - 1) % len(m.tabs)
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "MATCH HISTORY"
	if m.username != "" {
		title += " - " + m.username
	}
	b.WriteString(boldStyle.MarginBottom(1).Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tabStyle := dimStyle
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, len(m.tabs))
	for i, id := range m.tabs {
		name := id
		if name == "" {
			name = "all"
		}
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(" " + name + " ")
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.tableContent()))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m HistoryModel) tableContent() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.err != nil:
		return downStyle.Padding(2, 4).Render(m.err.Error())
	case len(m.records) == 0:
		return empty.Render("No matches recorded yet.")
	}
	return m.table.View()
}

// RunHistory shows the history screen until the user quits.
func RunHistory(store HistoryStore, username string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(store, username, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
