package multiplayer

import (
	"github.com/vovakirdan/rally/internal/channel"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
)

// Event is sent from the runtime to the presentation layer.
type Event interface {
	runtimeEvent()
}

// FrameEvent is emitted once per tick with everything the renderer needs.
type FrameEvent struct {
	Tick     uint64
	Status   Status
	Snapshot GameSnapshot
}

func (FrameEvent) runtimeEvent() {}

// MatchEndedEvent is emitted when the match reaches a terminal state, and
// again if a late confirmation changes the displayed result.
type MatchEndedEvent struct {
	Reason MatchEndReason
	Result match.Result
}

func (MatchEndedEvent) runtimeEvent() {}

// Status is the non-visual state shown around the table.
type Status struct {
	Mode       string
	Role       core.Role
	Identity   match.Identity
	Local      bool // no network channel
	Connection channel.State
	Scoreboard bool // points and sets are tracked client-side

	Match          match.State
	Points         match.GameScore
	Sets           match.MatchScore
	Degraded       bool
	ForfeitPending bool
	Result         *match.Result

	// Message is the most urgent user-facing text, or empty.
	Message string
}

// Names returns the player1 and player2 usernames.
func (s Status) Names() (string, string) {
	if s.Identity.Local == match.Player2 {
		return s.Identity.Opponent, s.Identity.Username
	}
	return s.Identity.Username, s.Identity.Opponent
}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted MatchEndReason = iota // Sets threshold reached
	MatchEndReasonForfeit                         // Server declared a forfeit
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonForfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// GameSnapshot is the mode-specific view of one frame.
type GameSnapshot interface {
	IsGameSnapshot() // Marker method for type safety

	// Draw renders the table into dst. The screen is pre-cleared.
	Draw(dst *core.Screen)
}
