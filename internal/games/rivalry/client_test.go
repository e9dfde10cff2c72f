package rivalry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/protocol"
	"github.com/vovakirdan/rally/internal/registry"
)

const frame = 16 * time.Millisecond

var live = multiplayer.Gate{Live: true, Playing: true}

func held(actions ...core.Action) core.MultiInputFrame {
	in := core.NewMultiInputFrame()
	f := core.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	in.SetSide(core.SidePlayer, f)
	return in
}

func TestInputRelayRate(t *testing.T) {
	c := NewClient(config.RivalryConfig{InputRate: 20}, match.Player1)

	var sent []protocol.Message
	for i := 0; i < 5; i++ {
		sent = append(sent, c.Step(frame, held(core.ActionShoot), live)...)
	}
	if len(sent) != 2 {
		t.Fatalf("sent %d inputs over 80ms at 20Hz, expected 2", len(sent))
	}
	for _, m := range sent {
		if pi := m.(protocol.PlayerInput); pi.Input != protocol.InputShoot {
			t.Errorf("input = %q", pi.Input)
		}
	}
}

func TestInputRelayOnlyWhileHeldAndLive(t *testing.T) {
	tests := []struct {
		name string
		in   core.MultiInputFrame
		gate multiplayer.Gate
	}{
		{"no key", core.NewMultiInputFrame(), live},
		{"disconnected", held(core.ActionLeft), multiplayer.Gate{Playing: true}},
		{"not started", held(core.ActionLeft), multiplayer.Gate{Live: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(config.RivalryConfig{InputRate: 20}, match.Player1)
			for i := 0; i < 10; i++ {
				if msgs := c.Step(frame, tc.in, tc.gate); len(msgs) != 0 {
					t.Fatalf("frame %d sent %v", i, msgs)
				}
			}
		})
	}
}

func TestEveryHeldKeyRelayed(t *testing.T) {
	c := NewClient(config.RivalryConfig{}, match.Player1)
	msgs := c.Step(frame, held(core.ActionLeft, core.ActionShoot), live)
	if len(msgs) != 2 {
		t.Fatalf("sent %d inputs, expected 2", len(msgs))
	}
	if msgs[0].(protocol.PlayerInput).Input != protocol.InputLeft || msgs[1].(protocol.PlayerInput).Input != protocol.InputShoot {
		t.Errorf("inputs = %v", msgs)
	}
}

func TestApplySnapshot(t *testing.T) {
	c := NewClient(config.RivalryConfig{}, match.Player2)
	if _, ok := c.State(); ok {
		t.Fatal("state before any snapshot")
	}

	raw := json.RawMessage(`{
		"width": 100, "height": 100,
		"ships": {"player1": {"x": 50, "y": 90, "lives": 3}, "player2": {"x": 10, "y": 10, "lives": 2}},
		"bullets": [{"x": 50, "y": 50, "owner": "player1"}],
		"invaders": [{"x": 20, "y": 40}, {"x": 80, "y": 40, "alive": false}],
		"scores": {"player1": 4, "player2": 7}
	}`)
	c.Apply(protocol.Envelope{Message: protocol.GameState{State: raw}})

	st, ok := c.State()
	if !ok || st.Ship(match.Player2).Lives != 2 || len(st.Invaders) != 2 || st.Scores.Player2 != 7 {
		t.Fatalf("state = %+v", st)
	}

	s := core.NewScreen(101, 102)
	c.Snapshot().Draw(s)

	if !strings.HasPrefix(s.Row(0), "You 7 : 4 Them") {
		t.Errorf("score row = %q", s.Row(0))
	}
	// Player2's ship at y=10 is drawn near the bottom once the field is flipped.
	if got := s.Get(10, 1+90); got != ShipChar {
		t.Errorf("own ship cell = %q", got)
	}
	if got := s.Get(50, 1+10); got != EnemyShipChar {
		t.Errorf("enemy ship cell = %q", got)
	}
	if got := s.Get(80, 1+60); got == InvaderChar {
		t.Error("dead invader drawn")
	}
	if got := s.Get(20, 1+60); got != InvaderChar {
		t.Errorf("invader cell = %q", got)
	}
}

func TestModeRegistered(t *testing.T) {
	mode, err := registry.Create("rivalry")
	if err != nil {
		t.Fatal(err)
	}

	env := registry.Env{Config: config.Default()}
	env.Session.GameID = "9"
	env.Session.Username = "ann"
	env.Session.IsPlayer1 = true
	built, err := mode.Build(env)
	if err != nil {
		t.Fatal(err)
	}
	if built.Policy.Simulates() || !built.Policy.Permits(protocol.TypePlayerInput) {
		t.Error("rivalry policy must relay input and never simulate")
	}
	if want := "ws://localhost:8000/ws/space-rivalry/9/?username=ann"; built.URL != want {
		t.Errorf("URL = %q, expected %q", built.URL, want)
	}
}
