// Package pong implements table-tennis Pong for the rally client: an online
// controller for either side of the authority split and local controllers
// for two or four players sharing one keyboard.
package pong

import (
	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/registry"
)

// OnlineMode is Pong against a remote opponent.
type OnlineMode struct{}

func (OnlineMode) ID() string    { return "pong" }
func (OnlineMode) Title() string { return "Pong" }
func (OnlineMode) Online() bool  { return true }

// Build wires the controller for the session's role.
func (OnlineMode) Build(env registry.Env) (registry.Match, error) {
	role := env.Session.Role()
	policy := authority.New(role, authority.ModePong)
	m := match.New(match.RulesFromConfig(env.Config.Match), env.Identity(), role)
	return registry.Match{
		Machine:    m,
		Policy:     policy,
		Controller: NewRemote(env.Config.Physics, m, policy, env.Seed),
		URL:        env.Config.PongURL(env.Session.GameID.String(), env.Session.Username),
		Init:       env.Init(),
	}, nil
}

// LocalMode is Pong for two players on one keyboard.
type LocalMode struct{}

func (LocalMode) ID() string    { return "pong-local" }
func (LocalMode) Title() string { return "Pong (local two-player)" }
func (LocalMode) Online() bool  { return false }

// Build wires a local match. Bottom is player1.
func (LocalMode) Build(env registry.Env) (registry.Match, error) {
	id := match.Identity{Local: match.Player1, Username: "Bottom", Opponent: "Top"}
	policy := authority.New(core.RoleAuthority, authority.ModePong)
	m := match.New(match.RulesFromConfig(env.Config.Match), id, policy.Role())
	return registry.Match{
		Machine:    m,
		Policy:     policy,
		Controller: NewLocal(env.Config.Physics, m, env.Seed),
		Seats:      2,
	}, nil
}

// QuadraMode is doubles Pong: two pairs on one keyboard.
type QuadraMode struct{}

func (QuadraMode) ID() string    { return "pong-quadra" }
func (QuadraMode) Title() string { return "Pong (local doubles)" }
func (QuadraMode) Online() bool  { return false }

// Build wires a local doubles match. The bottom pair is player1.
func (QuadraMode) Build(env registry.Env) (registry.Match, error) {
	id := match.Identity{Local: match.Player1, Username: "Bottom pair", Opponent: "Top pair"}
	policy := authority.New(core.RoleAuthority, authority.ModePong)
	m := match.New(match.RulesFromConfig(env.Config.Match), id, policy.Role())
	return registry.Match{
		Machine:    m,
		Policy:     policy,
		Controller: NewQuadra(env.Config.Physics, m, env.Seed),
		Seats:      4,
	}, nil
}

// Register the modes with the registry
func init() {
	registry.Register("pong", func() registry.Mode { return OnlineMode{} })
	registry.Register("pong-local", func() registry.Mode { return LocalMode{} })
	registry.Register("pong-quadra", func() registry.Mode { return QuadraMode{} })
}
