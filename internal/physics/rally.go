package physics

import "github.com/vovakirdan/rally/internal/core"

// Rally is the transient state of the point in play.
type Rally struct {
	PlayerBounces   int
	OpponentBounces int
	LastHitBy       core.Side
}

// Bounces returns the table-bounce count on side's half.
func (r Rally) Bounces(side core.Side) int {
	switch side {
	case core.SidePlayer:
		return r.PlayerBounces
	case core.SideOpponent:
		return r.OpponentBounces
	default:
		return 0
	}
}

func (r *Rally) bounce(side core.Side) int {
	switch side {
	case core.SidePlayer:
		r.PlayerBounces++
		return r.PlayerBounces
	case core.SideOpponent:
		r.OpponentBounces++
		return r.OpponentBounces
	default:
		return 0
	}
}

func (r *Rally) clearBounces() {
	r.PlayerBounces = 0
	r.OpponentBounces = 0
}

// OutOfBoundsScorer returns who wins the point when the ball leaves play past
// the end of crossed's half.
//
//	crossed bounces  other bounces  scorer
//	1                any            other side
//	0                0              other side
//	0                1              crossed side
//
// Two bounces on one half never reach this table; the second bounce ends the
// point immediately.
func OutOfBoundsScorer(r Rally, crossed core.Side) core.Side {
	s := r.Bounces(crossed)
	t := r.Bounces(crossed.Other())
	if s == 0 && t >= 1 {
		return crossed
	}
	return crossed.Other()
}
