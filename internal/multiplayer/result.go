package multiplayer

import (
	"time"

	"github.com/vovakirdan/rally/internal/match"
)

// MatchResultSaver persists finished matches.
// This allows the runtime to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	GameID       string
	Mode         string
	Username     string
	Opponent     string
	Role         string
	Score1       int // sets won by player1
	Score2       int // sets won by player2
	Winner       string
	EndReason    string
	DurationSecs int
}

func resultData(status Status, r match.Result, reason MatchEndReason, played time.Duration) MatchResultData {
	return MatchResultData{
		GameID:       status.Identity.GameID.String(),
		Mode:         status.Mode,
		Username:     status.Identity.Username,
		Opponent:     status.Identity.Opponent,
		Role:         status.Role.String(),
		Score1:       r.FinalScore.Player1,
		Score2:       r.FinalScore.Player2,
		Winner:       r.Winner,
		EndReason:    reason.String(),
		DurationSecs: int(played / time.Second),
	}
}
