// Package match tracks the lifecycle and score of one match. The authority
// feeds it points from the local simulation; a spectator feeds it the
// authority's messages. Either way the machine is the only owner of the
// score.
package match

import (
	"time"

	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/protocol"
)

// User-facing texts.
const (
	MsgOpponentLeft     = "Opponent disconnected. Waiting for them to return..."
	MsgOpponentGone     = "Opponent has not returned. Waiting for the server to end the match."
	MsgOpponentReturned = "Opponent reconnected."
)

// Identity names the session the machine belongs to.
type Identity struct {
	GameID   core.ID
	Local    Slot
	Username string
	Opponent string
}

// Update describes a scoring change made by AwardPoint.
type Update struct {
	Scorer Slot
	Points GameScore // after the point; zero when a set was just won
	Sets   MatchScore
	SetWon Slot // NoSlot unless this point won a set
	Result *Result
}

// Machine is the match state machine.
type Machine struct {
	rules Rules
	id    Identity
	role  core.Role

	state  State
	points GameScore
	sets   MatchScore
	result *Result

	degraded       bool
	forfeitPending bool
	graceUntil     time.Time
	settleUntil    time.Time
	message        string

	updates []Update
}

// New creates a machine in the waiting state.
func New(rules Rules, id Identity, role core.Role) *Machine {
	if id.Local == NoSlot {
		id.Local = Player1
	}
	return &Machine{rules: rules, id: id, role: role}
}

// Start moves a waiting machine into play without a server handshake.
// Local matches use it.
func (m *Machine) Start() {
	if m.state == StateWaiting {
		m.state = StateInProgress
	}
}

func (m *Machine) State() State         { return m.state }
func (m *Machine) Points() GameScore    { return m.points }
func (m *Machine) Sets() MatchScore     { return m.sets }
func (m *Machine) Rules() Rules         { return m.rules }
func (m *Machine) Identity() Identity   { return m.id }
func (m *Machine) Degraded() bool       { return m.degraded }
func (m *Machine) ForfeitPending() bool { return m.forfeitPending }
func (m *Machine) Message() string      { return m.message }
func (m *Machine) Terminal() bool       { return m.state.Terminal() }

// SlotOf maps a table side onto a seat.
func (m *Machine) SlotOf(s core.Side) Slot {
	switch s {
	case core.SidePlayer:
		return m.id.Local
	case core.SideOpponent:
		return m.id.Local.Other()
	default:
		return NoSlot
	}
}

// Result returns the frozen result once the match is over.
func (m *Machine) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// NameOf returns the username in slot.
func (m *Machine) NameOf(s Slot) string {
	if s == m.id.Local {
		return m.id.Username
	}
	return m.id.Opponent
}

// AwardPoint lets the physics engine report a point for a table side.
func (m *Machine) AwardPoint(side core.Side) {
	m.Award(m.SlotOf(side))
}

// Award scores one point for slot and resolves set and match wins. It does
// nothing outside of play.
func (m *Machine) Award(slot Slot) (Update, bool) {
	if m.state != StateInProgress || slot == NoSlot {
		return Update{}, false
	}

	m.points.add(slot)
	u := Update{Scorer: slot, Points: m.points, Sets: m.sets}

	if m.rules.SetWon(m.points, slot) {
		m.sets.add(slot)
		m.points = GameScore{}
		u.SetWon = slot
		u.Points = m.points
		u.Sets = m.sets

		if m.sets.Of(slot) >= m.rules.SetsToWin() {
			r := m.finish(Result{
				Winner:     m.NameOf(slot),
				WinnerSlot: slot,
				FinalScore: m.sets,
			}, StateCompleted)
			u.Result = &r
		}
	}

	m.updates = append(m.updates, u)
	return u, true
}

// Drain returns and clears the updates recorded since the last call.
func (m *Machine) Drain() []Update {
	u := m.updates
	m.updates = nil
	return u
}

// finish freezes the result and clears the live score.
func (m *Machine) finish(r Result, s State) Result {
	m.state = s
	m.result = &r
	m.points = GameScore{}
	m.sets = MatchScore{}
	m.degraded = false
	m.forfeitPending = false
	m.graceUntil = time.Time{}
	m.settleUntil = time.Time{}
	return r
}

// Apply processes one inbound message. It reports whether the machine
// changed. Messages for another game, stale score messages and anything
// after the match ended are ignored, except a late end confirmation, which
// may still update the displayed result.
func (m *Machine) Apply(env protocol.Envelope, now time.Time) bool {
	if env.GameID != "" && m.id.GameID != "" && env.GameID != m.id.GameID {
		return false
	}

	switch msg := env.Message.(type) {
	case protocol.GameEndedByForfeit:
		return m.endConfirmed(msg.State, true)
	case protocol.GameEnded:
		return m.endConfirmed(msg.State, msg.State.DisconnectForfeit)
	}

	if m.state.Terminal() {
		return false
	}

	switch msg := env.Message.(type) {
	case protocol.GameState:
		changed := false
		if m.state == StateWaiting {
			m.state = StateInProgress
			changed = true
		}
		if w := msg.Header().Winner; w != "" {
			m.finish(Result{Winner: w, WinnerSlot: m.slotNamed(w), FinalScore: m.sets}, StateCompleted)
			changed = true
		}
		return changed

	case protocol.ScoreUpdate:
		return m.applyScore(msg)

	case protocol.GameWon:
		return m.applyGameWon(msg)

	case protocol.MatchComplete:
		if m.role == core.RoleAuthority {
			return false
		}
		winner := m.slotNamed(msg.Winner)
		m.finish(Result{
			Winner:            msg.Winner,
			WinnerSlot:        winner,
			FinalScore:        MatchScore{Player1: msg.FinalScore.Player1, Player2: msg.FinalScore.Player2},
			Forfeit:           msg.Forfeit,
			DisconnectForfeit: msg.Forfeit,
		}, StateCompleted)
		return true

	case protocol.PlayerDisconnected:
		m.degraded = true
		m.forfeitPending = false
		m.settleUntil = time.Time{}
		m.graceUntil = now.Add(m.rules.DisconnectGrace)
		m.message = textOr(msg.Message, MsgOpponentLeft)
		return true

	case protocol.PlayerReconnected:
		m.forfeitPending = false
		m.graceUntil = time.Time{}
		m.settleUntil = now.Add(m.rules.ReconnectSettle)
		m.message = textOr(msg.Message, MsgOpponentReturned)
		return true

	case protocol.ConnectionWarning:
		m.message = msg.Message
		return true
	}
	return false
}

// applyScore mirrors the authority's score. Anything that would move the
// score backwards is a stale duplicate.
func (m *Machine) applyScore(msg protocol.ScoreUpdate) bool {
	if m.role == core.RoleAuthority {
		return false
	}
	sets := MatchScore{Player1: msg.PlayerGamesWon, Player2: msg.AIGamesWon}
	points := GameScore{Player1: msg.Scores.Player1, Player2: msg.Scores.Player2}

	switch {
	case sets.Player1 < m.sets.Player1 || sets.Player2 < m.sets.Player2:
		return false
	case sets == m.sets && (points.Player1 < m.points.Player1 || points.Player2 < m.points.Player2):
		return false
	case sets == m.sets && points == m.points:
		return false
	}

	m.sets = sets
	m.points = points
	return true
}

func (m *Machine) applyGameWon(msg protocol.GameWon) bool {
	if m.role == core.RoleAuthority {
		return false
	}
	sets := MatchScore{Player1: msg.Matches.Player1, Player2: msg.Matches.Player2}
	if sets.Player1 < m.sets.Player1 || sets.Player2 < m.sets.Player2 || sets == m.sets {
		return false
	}
	m.sets = sets
	m.points = GameScore{}
	return true
}

func (m *Machine) endConfirmed(s protocol.EndState, forfeit bool) bool {
	r := Result{
		Winner:            s.Winner,
		WinnerSlot:        m.slotNamed(s.Winner),
		Forfeit:           forfeit,
		DisconnectForfeit: s.DisconnectForfeit,
	}
	if m.state.Terminal() {
		// Late confirmation: refresh the displayed result only.
		if m.result != nil {
			r.FinalScore = m.result.FinalScore
			if r.Winner == "" {
				r.Winner, r.WinnerSlot = m.result.Winner, m.result.WinnerSlot
			}
		}
		if m.result != nil && *m.result == r {
			return false
		}
		m.result = &r
		return true
	}

	r.FinalScore = m.sets
	state := StateCompleted
	if forfeit {
		state = StateCompletedForfeit
	}
	m.finish(r, state)
	return true
}

// Advance applies grace and settle deadlines that have passed by now.
func (m *Machine) Advance(now time.Time) bool {
	changed := false
	if !m.graceUntil.IsZero() && !now.Before(m.graceUntil) {
		m.graceUntil = time.Time{}
		m.forfeitPending = true
		m.message = MsgOpponentGone
		changed = true
	}
	if !m.settleUntil.IsZero() && !now.Before(m.settleUntil) {
		m.settleUntil = time.Time{}
		m.degraded = false
		m.message = ""
		changed = true
	}
	return changed
}

func (m *Machine) slotNamed(name string) Slot {
	switch name {
	case "":
		return NoSlot
	case m.id.Username:
		return m.id.Local
	case m.id.Opponent:
		return m.id.Local.Other()
	case Player1.String():
		return Player1
	case Player2.String():
		return Player2
	default:
		return NoSlot
	}
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
