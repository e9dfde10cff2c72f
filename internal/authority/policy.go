// Package authority decides, once per session, which peer simulates the
// match and what each peer is allowed to put on the wire.
package authority

import (
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/protocol"
)

// Mode is the game being played.
type Mode int

const (
	ModePong Mode = iota
	ModeRivalry
)

func (m Mode) String() string {
	switch m {
	case ModePong:
		return "pong"
	case ModeRivalry:
		return "rivalry"
	default:
		return "unknown"
	}
}

// Policy is built from the session role and never changes.
type Policy struct {
	role    core.Role
	mode    Mode
	allowed map[protocol.Type]bool
}

// New builds the policy for role in mode.
func New(role core.Role, mode Mode) Policy {
	allowed := map[protocol.Type]bool{protocol.TypeInit: true}
	switch mode {
	case ModeRivalry:
		allowed[protocol.TypePlayerInput] = true
	default:
		allowed[protocol.TypeMouseMove] = true
		if role == core.RoleAuthority {
			allowed[protocol.TypeBallPosition] = true
			allowed[protocol.TypeScoreUpdate] = true
			allowed[protocol.TypeGameWon] = true
			allowed[protocol.TypeMatchComplete] = true
		}
	}
	return Policy{role: role, mode: mode, allowed: allowed}
}

func (p Policy) Role() core.Role { return p.role }
func (p Policy) Mode() Mode      { return p.mode }

// Simulates reports whether this peer runs the ball physics.
func (p Policy) Simulates() bool {
	return p.mode == ModePong && p.role == core.RoleAuthority
}

// Permits reports whether this peer may send messages of type t.
func (p Policy) Permits(t protocol.Type) bool {
	return p.allowed[t]
}

// Ball returns the per-frame ball broadcast, or false for a spectator.
func (p Policy) Ball(pos core.Vec3) (protocol.Message, bool) {
	if !p.Simulates() {
		return nil, false
	}
	return protocol.BallPosition{BallPosition: protocol.FromCore(pos)}, true
}

// Announce turns a scoring update into the messages the authority must send
// immediately: always a score_update, then game_won on a set win and
// match_complete on a match win. Spectators announce nothing.
func (p Policy) Announce(u match.Update, nameOf func(match.Slot) string) []protocol.Message {
	if !p.Simulates() {
		return nil
	}

	msgs := []protocol.Message{protocol.ScoreUpdate{
		Scores:         protocol.Pair{Player1: u.Points.Player1, Player2: u.Points.Player2},
		ScoringPlayer:  u.Scorer.String(),
		PlayerGamesWon: u.Sets.Player1,
		AIGamesWon:     u.Sets.Player2,
	}}

	if u.SetWon != match.NoSlot {
		msgs = append(msgs, protocol.GameWon{
			Winner:  nameOf(u.SetWon),
			Matches: protocol.Pair{Player1: u.Sets.Player1, Player2: u.Sets.Player2},
		})
	}
	if u.Result != nil {
		msgs = append(msgs, protocol.MatchComplete{
			Winner:     u.Result.Winner,
			FinalScore: protocol.Pair{Player1: u.Result.FinalScore.Player1, Player2: u.Result.FinalScore.Player2},
		})
	}
	return msgs
}
