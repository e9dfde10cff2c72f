package pong

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/physics"
	"github.com/vovakirdan/rally/internal/protocol"
)

const frame = 16 * time.Millisecond

var live = multiplayer.Gate{Live: true, Playing: true}

func newRemote(role core.Role) (*Remote, *match.Machine) {
	local := match.Player1
	if role == core.RoleSpectator {
		local = match.Player2
	}
	rules := match.Rules{MaxScore: 11, MaxSets: 3}
	m := match.New(rules, match.Identity{GameID: "7", Local: local, Username: "ann", Opponent: "bob"}, role)
	m.Start()
	return NewRemote(config.DefaultPhysics(), m, authority.New(role, authority.ModePong), 1), m
}

func keys(actions ...core.Action) core.MultiInputFrame {
	in := core.NewMultiInputFrame()
	f := core.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	in.SetSide(core.SidePlayer, f)
	return in
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRemoteIdleUntilLive(t *testing.T) {
	tests := []struct {
		name string
		gate multiplayer.Gate
	}{
		{"disconnected", multiplayer.Gate{Playing: true}},
		{"waiting", multiplayer.Gate{Live: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newRemote(core.RoleAuthority)
			before := r.Engine().Ball().Position
			if msgs := r.Step(frame, keys(core.ActionRight), tc.gate); len(msgs) != 0 {
				t.Errorf("sent %d messages", len(msgs))
			}
			if r.Engine().Ball().Position != before {
				t.Error("ball moved")
			}
		})
	}
}

func TestAuthorityBroadcastsBallEveryFrame(t *testing.T) {
	r, _ := newRemote(core.RoleAuthority)
	start := r.Engine().Ball().Position

	for i := 0; i < 3; i++ {
		msgs := r.Step(frame, core.NewMultiInputFrame(), live)
		if len(msgs) != 1 {
			t.Fatalf("frame %d: sent %d messages, expected 1", i, len(msgs))
		}
		bp, ok := msgs[0].(protocol.BallPosition)
		if !ok {
			t.Fatalf("frame %d: sent %T", i, msgs[0])
		}
		if bp.BallPosition.Core() != r.Engine().Ball().Position {
			t.Errorf("frame %d: broadcast %+v, engine at %+v", i, bp.BallPosition, r.Engine().Ball().Position)
		}
	}
	if r.Engine().Ball().Position == start {
		t.Error("authority did not simulate")
	}
}

func TestSpectatorMirrorsBall(t *testing.T) {
	r, _ := newRemote(core.RoleSpectator)
	start := r.Engine().Ball().Position

	for _, m := range r.Step(frame, core.NewMultiInputFrame(), live) {
		if m.MessageType() == protocol.TypeBallPosition {
			t.Fatal("spectator broadcast the ball")
		}
	}
	if r.Engine().Ball().Position != start {
		t.Fatal("spectator simulated the ball")
	}

	r.Apply(protocol.Envelope{Message: protocol.BallPosition{BallPosition: protocol.Vec3{X: 1, Y: 2, Z: 3}}})
	if got := r.Engine().Ball().Position; got != core.V3(-1, 2, -3) {
		t.Errorf("ball = %+v, expected the authority's view turned around", got)
	}
}

func TestSpectatorAppliesGameState(t *testing.T) {
	r, _ := newRemote(core.RoleSpectator)
	state := json.RawMessage(`{"ball_position":{"x":1,"y":0.5,"z":-4},"player1_paddle":{"x":2,"y":1.5,"z":7},"player2_paddle":{"x":0,"y":1,"z":-7}}`)
	r.Apply(protocol.Envelope{Message: protocol.GameState{State: state}})

	if got := r.Engine().Ball().Position; got != core.V3(-1, 0.5, 4) {
		t.Errorf("ball = %+v", got)
	}
	if got := r.Engine().Paddle(core.SideOpponent).Position; got != core.V3(-2, 1.5, -7) {
		t.Errorf("opponent paddle = %+v", got)
	}

	// An empty snapshot changes nothing.
	r.Apply(protocol.Envelope{Message: protocol.GameState{}})
	if got := r.Engine().Ball().Position; got != core.V3(-1, 0.5, 4) {
		t.Errorf("ball moved on empty state: %+v", got)
	}
}

func TestAuthorityIgnoresGameStatePositions(t *testing.T) {
	r, _ := newRemote(core.RoleAuthority)
	before := r.Engine().Ball().Position
	r.Apply(protocol.Envelope{Message: protocol.GameState{State: json.RawMessage(`{"ball_position":{"x":1,"y":1,"z":1}}`)}})
	r.Apply(protocol.Envelope{Message: protocol.BallPosition{BallPosition: protocol.Vec3{X: 2}}})
	if r.Engine().Ball().Position != before {
		t.Error("authority accepted a ball position from the network")
	}
}

func TestKeysRelayPointerOnce(t *testing.T) {
	r, _ := newRemote(core.RoleSpectator)
	cfg := config.DefaultPhysics()

	msgs := r.Step(100*time.Millisecond, keys(core.ActionRight), live)
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, expected 1", len(msgs))
	}
	mm, ok := msgs[0].(protocol.MouseMove)
	if !ok {
		t.Fatalf("sent %T", msgs[0])
	}
	wantX := cfg.Paddle.Speed * 0.1 / cfg.Paddle.MaxReachX
	if !near(mm.MousePosition.X, wantX) || mm.MousePosition.Y != 0 {
		t.Errorf("pointer = %+v, expected x=%v", mm.MousePosition, wantX)
	}
	if got := r.Engine().Paddle(core.SidePlayer).Position.X; !near(got, cfg.Paddle.Speed*0.1) {
		t.Errorf("paddle x = %v", got)
	}

	if msgs := r.Step(frame, core.NewMultiInputFrame(), live); len(msgs) != 0 {
		t.Errorf("relayed an unchanged pointer: %v", msgs)
	}
}

func TestMousePointer(t *testing.T) {
	r, _ := newRemote(core.RoleSpectator)
	in := core.NewMultiInputFrame()
	f := core.NewInputFrame()
	f.Pointer = core.Pointer{X: 2, Y: -1, Valid: true}
	in.SetSide(core.SidePlayer, f)

	msgs := r.Step(frame, in, live)
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, expected 1", len(msgs))
	}
	if mm := msgs[0].(protocol.MouseMove); mm.MousePosition != (protocol.Vec2{X: 1, Y: -1}) {
		t.Errorf("pointer = %+v, expected it clamped", mm.MousePosition)
	}

	// The same pointer held over later frames is not a new move.
	if msgs := r.Step(frame, in, live); len(msgs) != 0 {
		t.Errorf("relayed a stale pointer: %v", msgs)
	}
}

func TestOpponentPointerMapsToOpponentPaddle(t *testing.T) {
	r, _ := newRemote(core.RoleAuthority)
	cfg := config.DefaultPhysics()
	r.Apply(protocol.Envelope{Message: protocol.MouseMove{MousePosition: protocol.Vec2{X: 0.5, Y: 1}}})

	got := r.Engine().Paddle(core.SideOpponent).Position
	if !near(got.X, -0.5*cfg.Paddle.MaxReachX) || !near(got.Y, cfg.Paddle.MaxY) || got.Z != -cfg.Paddle.Distance {
		t.Errorf("opponent paddle = %+v", got)
	}
}

func TestDegradedSuppressesPoints(t *testing.T) {
	tests := []struct {
		name     string
		degraded bool
		want     match.GameScore
	}{
		{"normal", false, match.GameScore{Player2: 1}},
		{"degraded", true, match.GameScore{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newRemote(core.RoleAuthority)
			r.Engine().Place(core.V3(0, 1.5, 9.5), core.Vec3{}, physics.Rally{PlayerBounces: 1})

			gate := live
			gate.Degraded = tc.degraded
			r.Step(frame, core.NewMultiInputFrame(), gate)
			if m.Points() != tc.want {
				t.Errorf("points = %+v, expected %+v", m.Points(), tc.want)
			}
			if r.Engine().Ball().Position.Z >= 0 {
				t.Errorf("ball not served from the opponent's half: %+v", r.Engine().Ball().Position)
			}
		})
	}
}

func TestSnapshotDraws(t *testing.T) {
	r, _ := newRemote(core.RoleAuthority)
	snap, ok := r.Snapshot().(Snapshot)
	if !ok {
		t.Fatalf("snapshot is %T", r.Snapshot())
	}

	s := core.NewScreen(40, 20)
	snap.Draw(s)
	var paddles, balls int
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			switch s.Get(x, y) {
			case PaddleChar:
				paddles++
			case BallChar, LobChar:
				balls++
			}
		}
	}
	if paddles == 0 || balls != 1 {
		t.Errorf("drew %d paddle cells and %d balls", paddles, balls)
	}

	// The local paddle is drawn below the opponent's.
	_, playerRow := snap.cell(s, snap.Player.X, snap.Player.Z)
	_, opponentRow := snap.cell(s, snap.Opponent.X, snap.Opponent.Z)
	if playerRow <= opponentRow {
		t.Errorf("player row %d, opponent row %d", playerRow, opponentRow)
	}
}
