package physics

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
)

const frame = time.Second / 60

type recordSink struct {
	points []core.Side
}

func (s *recordSink) AwardPoint(side core.Side) {
	s.points = append(s.points, side)
}

func newAuthority(t *testing.T) *Engine {
	t.Helper()
	return New(config.DefaultPhysics(), core.RoleAuthority, 1)
}

func TestOutOfBoundsScorerTable(t *testing.T) {
	tests := []struct {
		name    string
		crossed core.Side
		rally   Rally
		want    core.Side
	}{
		{"player end, no bounces", core.SidePlayer, Rally{}, core.SideOpponent},
		{"player end, bounced on player half", core.SidePlayer, Rally{PlayerBounces: 1}, core.SideOpponent},
		{"player end, bounced on opponent half", core.SidePlayer, Rally{OpponentBounces: 1}, core.SidePlayer},
		{"player end, bounced on both", core.SidePlayer, Rally{PlayerBounces: 1, OpponentBounces: 1}, core.SideOpponent},
		{"opponent end, no bounces", core.SideOpponent, Rally{}, core.SidePlayer},
		{"opponent end, bounced on opponent half", core.SideOpponent, Rally{OpponentBounces: 1}, core.SidePlayer},
		{"opponent end, bounced on player half", core.SideOpponent, Rally{PlayerBounces: 1}, core.SideOpponent},
		{"opponent end, bounced on both", core.SideOpponent, Rally{PlayerBounces: 1, OpponentBounces: 1}, core.SidePlayer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := OutOfBoundsScorer(tc.rally, tc.crossed); got != tc.want {
				t.Errorf("scorer = %s, expected %s", got, tc.want)
			}
		})
	}
}

func TestOutOfBoundsThroughStep(t *testing.T) {
	tests := []struct {
		name  string
		z     float64
		rally Rally
		want  core.Side
	}{
		{"past player end, 0/0", 9, Rally{LastHitBy: core.SideOpponent}, core.SideOpponent},
		{"past player end, 0/1", 9, Rally{OpponentBounces: 1, LastHitBy: core.SideOpponent}, core.SidePlayer},
		{"past player end, 1/0", 9, Rally{PlayerBounces: 1, LastHitBy: core.SideOpponent}, core.SideOpponent},
		{"past player end, 1/1", 9, Rally{PlayerBounces: 1, OpponentBounces: 1, LastHitBy: core.SideOpponent}, core.SideOpponent},
		{"past opponent end, 0/0", -9, Rally{LastHitBy: core.SidePlayer}, core.SidePlayer},
		{"past opponent end, 0/1", -9, Rally{PlayerBounces: 1, LastHitBy: core.SidePlayer}, core.SideOpponent},
		{"past opponent end, 1/0", -9, Rally{OpponentBounces: 1, LastHitBy: core.SidePlayer}, core.SidePlayer},
		{"past opponent end, 1/1", -9, Rally{PlayerBounces: 1, OpponentBounces: 1, LastHitBy: core.SidePlayer}, core.SidePlayer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newAuthority(t)
			sink := &recordSink{}
			e.Place(core.V3(0, 1.5, tc.z), core.Vec3{}, tc.rally)

			res := e.Step(frame, sink)
			if len(sink.points) != 1 || sink.points[0] != tc.want {
				t.Fatalf("points = %v, expected [%s]", sink.points, tc.want)
			}
			if res.Scorer != tc.want || !res.Reset {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestScenarioOutPastPlayerEndAfterOneBounce(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	oldBall := e.Ball().ID

	// Ball edge at 9.2 is past 6.14 + 3.
	e.Place(core.V3(0, 1.5, 9), core.Vec3{}, Rally{PlayerBounces: 1, LastHitBy: core.SideOpponent})
	e.Step(frame, sink)

	if len(sink.points) != 1 || sink.points[0] != core.SideOpponent {
		t.Fatalf("expected opponent to score, got %v", sink.points)
	}
	r := e.Rally()
	if r.PlayerBounces != 0 || r.OpponentBounces != 0 {
		t.Errorf("bounces not reset: %+v", r)
	}
	ball := e.Ball()
	if ball.ID == oldBall {
		t.Error("ball was not recreated")
	}
	if ball.Position.Z != -8 {
		t.Errorf("respawn z = %v, expected -8", ball.Position.Z)
	}
	if ball.Velocity.Z <= 0 {
		t.Errorf("serve should head toward the player half, vz = %v", ball.Velocity.Z)
	}
	if r.LastHitBy != core.SideOpponent {
		t.Errorf("lastHitBy = %s, expected opponent", r.LastHitBy)
	}
}

func TestInsideMarginIsInPlay(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	e.Place(core.V3(0, 1.5, 8.9), core.Vec3{}, Rally{LastHitBy: core.SideOpponent})
	e.Step(frame, sink)
	if len(sink.points) != 0 {
		t.Errorf("ball edge at 9.1 is still in play, got %v", sink.points)
	}
}

func TestPaddleAlternation(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	paddle := e.Paddle(core.SidePlayer)

	e.Place(paddle.Position, core.V3(0, 0, 1), Rally{LastHitBy: core.SideOpponent, PlayerBounces: 1})
	res := e.Step(frame, sink)
	if res.Hit != core.SidePlayer {
		t.Fatalf("expected player paddle hit, got %+v", res)
	}
	r := e.Rally()
	if r.LastHitBy != core.SidePlayer {
		t.Errorf("lastHitBy = %s", r.LastHitBy)
	}
	if r.PlayerBounces != 0 || r.OpponentBounces != 0 {
		t.Errorf("paddle hit must clear bounces: %+v", r)
	}
	if e.Ball().Velocity.Z >= 0 {
		t.Errorf("return should head toward the opponent, vz = %v", e.Ball().Velocity.Z)
	}

	// Same paddle again, well past the cooldown: no new response.
	for i := 0; i < 10; i++ {
		e.Place(paddle.Position, core.V3(0, 0, 1), e.Rally())
		if res := e.Step(frame, sink); res.Hit != core.SideNone {
			t.Fatalf("double hit registered on tick %d", i)
		}
	}

	// The other paddle may hit.
	opp := e.Paddle(core.SideOpponent)
	e.Place(opp.Position, core.V3(0, 0, -1), e.Rally())
	if res := e.Step(frame, sink); res.Hit != core.SideOpponent {
		t.Fatalf("expected opponent hit, got %+v", res)
	}
	if e.Ball().Velocity.Z <= 0 {
		t.Errorf("opponent return should head toward the player, vz = %v", e.Ball().Velocity.Z)
	}
	if e.Rally().LastHitBy != core.SideOpponent {
		t.Errorf("lastHitBy = %s", e.Rally().LastHitBy)
	}
}

func TestPaddleHitForceShape(t *testing.T) {
	cfg := config.DefaultPhysics()
	e := New(cfg, core.RoleAuthority, 1)
	paddle := e.Paddle(core.SidePlayer)
	box := paddle.Bounds()

	// Strike at the left edge, at the paddle bottom.
	pos := core.V3(box.Min.X, box.Min.Y, paddle.Position.Z)
	e.Place(pos, core.Vec3{}, Rally{LastHitBy: core.SideOpponent})
	e.Step(frame, nil)

	v := e.Ball().Velocity
	wantX := -0.5 * cfg.Hit.ForceX / cfg.Ball.Mass
	if math.Abs(v.X-wantX) > 1e-9 {
		t.Errorf("vx = %v, expected %v", v.X, wantX)
	}
	// The ball sinks below the paddle bottom during integration, so the
	// strike height clamps to zero and only the base lift remains.
	if math.Abs(v.Y-cfg.Hit.BaseY/cfg.Ball.Mass) > 1e-9 {
		t.Errorf("vy = %v, expected %v", v.Y, cfg.Hit.BaseY)
	}
	if v.Z >= 0 {
		t.Errorf("vz = %v, expected negative", v.Z)
	}
}

func TestDegeneratePaddleIsNoOpForce(t *testing.T) {
	tests := []struct {
		name string
		edit func(*config.PhysicsConfig)
	}{
		{"zero width", func(c *config.PhysicsConfig) { c.Paddle.Width = 0 }},
		{"zero ball mass", func(c *config.PhysicsConfig) { c.Ball.Mass = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultPhysics()
			tc.edit(&cfg)
			e := New(cfg, core.RoleAuthority, 1)
			paddle := e.Paddle(core.SidePlayer)

			// A zero-width paddle still has depth and height, so the ball
			// overlaps it when centered on it.
			e.Place(paddle.Position, core.V3(0, 0, 1), Rally{LastHitBy: core.SideOpponent})
			res := e.Step(frame, nil)

			ball := e.Ball()
			if !ball.Position.IsFinite() || !ball.Velocity.IsFinite() {
				t.Fatalf("non-finite ball state %+v", ball)
			}
			if res.Hit != core.SidePlayer {
				t.Fatalf("hit should still register, got %+v", res)
			}
			if e.Rally().LastHitBy != core.SidePlayer {
				t.Error("lastHitBy should flip even when the force is a no-op")
			}
		})
	}
}

func TestNonFiniteBallIsReset(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	e.Place(core.V3(math.NaN(), 1, 0), core.Vec3{}, Rally{})
	res := e.Step(frame, sink)

	if !res.Reset {
		t.Fatal("expected reset")
	}
	if len(sink.points) != 0 {
		t.Errorf("reset after NaN must not award points, got %v", sink.points)
	}
	if !e.Ball().Position.IsFinite() {
		t.Error("ball still non-finite")
	}
}

func TestTableDoubleBounceScores(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	cfg := config.DefaultPhysics()

	// Resting on the player half: one bounce per cooldown window.
	e.Place(core.V3(0, cfg.MinHeight, 3), core.Vec3{}, Rally{LastHitBy: core.SideOpponent})
	res := e.Step(frame, sink)
	if res.Bounce != core.SidePlayer || e.Rally().PlayerBounces != 1 {
		t.Fatalf("expected first bounce on player half, got %+v / %+v", res, e.Rally())
	}
	if e.Ball().Velocity.Y < 0 {
		t.Errorf("bounce must send the ball up, vy = %v", e.Ball().Velocity.Y)
	}

	// Within the cooldown nothing is counted.
	e.Place(core.V3(0, cfg.MinHeight, 3), core.Vec3{}, e.Rally())
	if res := e.Step(frame, sink); res.Bounce != core.SideNone {
		t.Fatalf("bounce counted inside cooldown: %+v", res)
	}

	for i := 0; i < 10 && len(sink.points) == 0; i++ {
		e.Place(core.V3(0, cfg.MinHeight, 3), core.Vec3{}, e.Rally())
		e.Step(frame, sink)
	}
	if len(sink.points) != 1 || sink.points[0] != core.SideOpponent {
		t.Fatalf("second bounce on player half should score for opponent, got %v", sink.points)
	}
}

func TestFloorClamp(t *testing.T) {
	e := newAuthority(t)
	cfg := config.DefaultPhysics()
	// Off the table (beyond its length but inside the margin) so only the
	// floor clamp acts.
	e.Place(core.V3(0, cfg.MinHeight+0.01, 7.5), core.V3(0, -10, 0), Rally{LastHitBy: core.SidePlayer})
	e.Step(frame, nil)

	b := e.Ball()
	if b.Position.Y != cfg.MinHeight {
		t.Errorf("y = %v, expected clamp to %v", b.Position.Y, cfg.MinHeight)
	}
	if b.Velocity.Y <= 0 || b.Velocity.Y >= 10 {
		t.Errorf("vy = %v, expected a lossy upward bounce", b.Velocity.Y)
	}
}

func TestNetDeflects(t *testing.T) {
	e := newAuthority(t)
	e.Place(core.V3(0, 0.4, 0), core.V3(0, 2, 4), Rally{LastHitBy: core.SideOpponent})
	res := e.Step(frame, nil)

	if !res.NetHit {
		t.Fatalf("expected net hit, got %+v", res)
	}
	if v := e.Ball().Velocity; v.Z >= 0 {
		t.Errorf("net must reverse z velocity, got %v", v.Z)
	}
}

func TestSpectatorNeverSteps(t *testing.T) {
	e := New(config.DefaultPhysics(), core.RoleSpectator, 1)
	sink := &recordSink{}
	e.Place(core.V3(0, 1.5, 9), core.Vec3{}, Rally{PlayerBounces: 1})
	before := e.Ball()

	for i := 0; i < 120; i++ {
		if res := e.Step(frame, sink); res.Advanced {
			t.Fatal("spectator engine advanced")
		}
	}
	if len(sink.points) != 0 {
		t.Errorf("spectator awarded points %v", sink.points)
	}
	if e.Ball().Position != before.Position {
		t.Error("spectator ball moved")
	}

	e.SetBall(core.V3(1, 2, 3))
	if e.Ball().Position != core.V3(1, 2, 3) {
		t.Error("SetBall did not mirror the position")
	}
}

func TestSuppressedScoring(t *testing.T) {
	e := newAuthority(t)
	sink := &recordSink{}
	e.SuppressScoring(true)
	e.Place(core.V3(0, 1.5, 9), core.Vec3{}, Rally{PlayerBounces: 1})

	res := e.Step(frame, sink)
	if len(sink.points) != 0 {
		t.Errorf("suppressed engine awarded %v", sink.points)
	}
	if !res.Reset || res.Scorer != core.SideOpponent {
		t.Errorf("ball should still reset, got %+v", res)
	}
}

func TestPointerMapping(t *testing.T) {
	e := newAuthority(t)
	cfg := config.DefaultPhysics()

	e.SetPaddleFromPointer(core.SidePlayer, 1, -1)
	p := e.Paddle(core.SidePlayer)
	if p.Position.X != cfg.Paddle.MaxReachX || p.Position.Y != cfg.Paddle.MinY {
		t.Errorf("player paddle at %+v", p.Position)
	}

	e.SetPaddleFromPointer(core.SideOpponent, 1, 1)
	o := e.Paddle(core.SideOpponent)
	if o.Position.X != -cfg.Paddle.MaxReachX || o.Position.Y != cfg.Paddle.MaxY {
		t.Errorf("opponent paddle at %+v, expected mirrored X", o.Position)
	}
	if o.Position.Z != -cfg.Paddle.Distance {
		t.Errorf("opponent paddle z = %v", o.Position.Z)
	}
}

func TestObjectIDsAreUnique(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 3; i++ {
		e := newAuthority(t)
		for _, id := range []uint64{e.Ball().ID, e.Paddle(core.SidePlayer).ID, e.Paddle(core.SideOpponent).ID} {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}
}

func TestDoublesSeatsAndLanes(t *testing.T) {
	cfg := config.DefaultPhysics()
	e := NewDoubles(cfg, 1)

	seats := e.Seats()
	if len(seats) != 4 || seats[0] != core.SidePlayer || seats[3] != core.SideOpponentPartner {
		t.Fatalf("seats = %v", seats)
	}

	tests := []struct {
		seat   core.Side
		push   float64
		wantX  float64
		wantZ  float64
		inLeft bool
	}{
		{core.SidePlayer, -1, 0, cfg.Paddle.Distance, false},
		{core.SidePlayerPartner, 1, 0, cfg.Paddle.Distance, true},
		{core.SideOpponent, 1, 0, -cfg.Paddle.Distance, true},
		{core.SideOpponentPartner, -1, 0, -cfg.Paddle.Distance, false},
	}
	for _, tc := range tests {
		t.Run(tc.seat.String(), func(t *testing.T) {
			start := e.Paddle(tc.seat).Position
			if (start.X < 0) != tc.inLeft || start.Z != tc.wantZ {
				t.Errorf("start = %+v", start)
			}
			// Push toward the partner's lane for a few seconds.
			e.MovePaddle(tc.seat, tc.push, 0)
			for range 180 {
				e.Step(frame, nil)
			}
			e.MovePaddle(tc.seat, 0, 0)
			if got := e.Paddle(tc.seat).Position.X; got != tc.wantX {
				t.Errorf("x = %v, expected to stop at %v", got, tc.wantX)
			}
		})
	}
}

func TestDoublesTeamAlternation(t *testing.T) {
	e := NewDoubles(config.DefaultPhysics(), 1)
	sink := &recordSink{}

	mine := e.Paddle(core.SidePlayer)
	e.Place(mine.Position, core.V3(0, 0, 1), Rally{LastHitBy: core.SideOpponent, PlayerBounces: 1})
	if res := e.Step(frame, sink); res.Hit != core.SidePlayer {
		t.Fatalf("expected player hit, got %+v", res)
	}
	if e.Rally().LastHitBy != core.SidePlayer {
		t.Errorf("lastHitBy = %s", e.Rally().LastHitBy)
	}

	// The partner may not return the team's own shot.
	partner := e.Paddle(core.SidePlayerPartner)
	e.Place(partner.Position, core.V3(0, 0, 1), e.Rally())
	if res := e.Step(frame, sink); res.Hit != core.SideNone {
		t.Fatalf("partner hit registered: %+v", res)
	}

	// Either opponent may.
	opp := e.Paddle(core.SideOpponentPartner)
	e.Place(opp.Position, core.V3(0, 0, -1), e.Rally())
	res := e.Step(frame, sink)
	if res.Hit != core.SideOpponentPartner {
		t.Fatalf("expected opponent partner hit, got %+v", res)
	}
	if e.Rally().LastHitBy != core.SideOpponent {
		t.Errorf("lastHitBy = %s, expected the opponent team", e.Rally().LastHitBy)
	}
	if e.Ball().Velocity.Z <= 0 {
		t.Errorf("return should head toward the player half, vz = %v", e.Ball().Velocity.Z)
	}
}
