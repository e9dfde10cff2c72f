package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/rally/internal/channel"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/games/pong"
	"github.com/vovakirdan/rally/internal/games/rivalry"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
)

var (
	plainStyle = lipgloss.NewStyle()
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	liveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(1, 4).
			Align(lipgloss.Center)
)

// runeStyles colours the sprites of every mode. Anything else is drawn plain.
var runeStyles = map[rune]lipgloss.Style{
	pong.PaddleChar:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	pong.BallChar:         lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	pong.LobChar:          lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	pong.NetChar:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	pong.EdgeChar:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	rivalry.ShipChar:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	rivalry.EnemyShipChar: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	rivalry.InvaderChar:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	rivalry.BulletChar:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

func styleOf(r rune) (lipgloss.Style, bool) {
	st, ok := runeStyles[r]
	return st, ok
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells that share a style are emitted as one run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		x := 0
		for x < s.Width() {
			style, styled := styleOf(s.Get(x, y))
			run.Reset()
			for x < s.Width() {
				r := s.Get(x, y)
				next, ok := styleOf(r)
				if ok != styled || (ok && next.GetForeground() != style.GetForeground()) {
					break
				}
				run.WriteRune(r)
				x++
			}
			if styled {
				sb.WriteString(style.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
		}
	}
	return sb.String()
}

// renderStatus draws the one-line bar above the table.
func renderStatus(st multiplayer.Status, spin string, width int) string {
	p1, p2 := st.Names()
	left := playerName(p1, st.Identity.Local == match.Player1) + dimStyle.Render(" vs ") + playerName(p2, st.Identity.Local == match.Player2)
	if st.Scoreboard {
		left += fmt.Sprintf("   sets %d-%d   points %d-%d",
			st.Sets.Player1, st.Sets.Player2, st.Points.Player1, st.Points.Player2)
	}

	right := connectionLabel(st, spin)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(max(width, 0)).Render(left + strings.Repeat(" ", gap) + right)
}

func playerName(name string, local bool) string {
	if name == "" {
		name = "?"
	}
	if local {
		return boldStyle.Render(name)
	}
	return plainStyle.Render(name)
}

func connectionLabel(st multiplayer.Status, spin string) string {
	if st.Local {
		return dimStyle.Render("local")
	}
	label := st.Role.String()
	switch st.Connection {
	case channel.StateConnected:
		if st.Degraded {
			return warnStyle.Render("opponent away · " + label)
		}
		return liveStyle.Render("● live · " + label)
	case channel.StateConnecting, channel.StateReconnecting:
		return warnStyle.Render(spin + " " + st.Connection.String())
	default:
		return downStyle.Render("○ " + st.Connection.String())
	}
}

// renderMessage draws the notice line below the status bar.
func renderMessage(st multiplayer.Status, width int) string {
	if st.Message == "" {
		return ""
	}
	style := warnStyle
	if st.Connection == channel.StateDisconnected {
		style = downStyle
	}
	return style.Render(centerText(st.Message, width))
}

// renderResult draws the final result panel.
func renderResult(st multiplayer.Status, ended multiplayer.MatchEndedEvent, width, height int) string {
	res := ended.Result
	lines := []string{boldStyle.Render(res.Headline())}
	if st.Scoreboard {
		p1, p2 := st.Names()
		lines = append(lines, fmt.Sprintf("%s %d - %d %s", p1, st.Sets.Player1, st.Sets.Player2, p2))
	}
	if res.Winner != "" {
		if res.Winner == st.Identity.Username {
			lines = append(lines, liveStyle.Render("You win!"))
		} else {
			lines = append(lines, downStyle.Render("You lose"))
		}
	}
	lines = append(lines, "", dimStyle.Render("press q to leave"))
	box := resultStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(max(width, 0), max(height, 0), lipgloss.Center, lipgloss.Center, box)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
