package match

import (
	"time"

	"github.com/vovakirdan/rally/internal/config"
)

// State is the lifecycle of one match.
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateCompleted
	StateCompletedForfeit
)

// Terminal reports whether no further transition may leave s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCompletedForfeit
}

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateCompletedForfeit:
		return "completed_forfeit"
	default:
		return "unknown"
	}
}

// Slot is a player's seat as the server names it.
type Slot int

const (
	NoSlot Slot = iota
	Player1
	Player2
)

// Other returns the opposite seat.
func (s Slot) Other() Slot {
	switch s {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoSlot
	}
}

func (s Slot) String() string {
	switch s {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "none"
	}
}

// GameScore counts points in the current set.
type GameScore struct {
	Player1 int
	Player2 int
}

// Of returns slot's points.
func (g GameScore) Of(s Slot) int {
	if s == Player2 {
		return g.Player2
	}
	return g.Player1
}

func (g *GameScore) add(s Slot) {
	if s == Player2 {
		g.Player2++
	} else {
		g.Player1++
	}
}

// MatchScore counts sets won.
type MatchScore struct {
	Player1 int
	Player2 int
}

// Of returns slot's sets.
func (m MatchScore) Of(s Slot) int {
	if s == Player2 {
		return m.Player2
	}
	return m.Player1
}

func (m *MatchScore) add(s Slot) {
	if s == Player2 {
		m.Player2++
	} else {
		m.Player1++
	}
}

// Rules are the scoring rules and disconnect timings.
type Rules struct {
	MaxScore        int
	MaxSets         int
	DisconnectGrace time.Duration
	ReconnectSettle time.Duration
}

// RulesFromConfig converts the match config section.
func RulesFromConfig(c config.MatchConfig) Rules {
	return Rules{
		MaxScore:        c.MaxScore,
		MaxSets:         c.MaxSets,
		DisconnectGrace: c.DisconnectGrace,
		ReconnectSettle: c.ReconnectSettle,
	}
}

// SetsToWin is ceil(MaxSets/2).
func (r Rules) SetsToWin() int {
	return (r.MaxSets + 1) / 2
}

// SetWon reports whether leader has taken the set: at least MaxScore points
// and a lead of two or more.
func (r Rules) SetWon(g GameScore, leader Slot) bool {
	mine, theirs := g.Of(leader), g.Of(leader.Other())
	return mine >= r.MaxScore && mine-theirs >= 2
}

// Result is the frozen outcome of a finished match.
type Result struct {
	Winner            string // username
	WinnerSlot        Slot
	FinalScore        MatchScore
	Forfeit           bool // ended by a forfeit message
	DisconnectForfeit bool // selects the "won by forfeit" wording
}

// Headline is the sentence shown for the result.
func (r Result) Headline() string {
	switch {
	case r.Winner == "":
		return "Match over"
	case r.DisconnectForfeit:
		return r.Winner + " won by forfeit"
	default:
		return r.Winner + " won"
	}
}
