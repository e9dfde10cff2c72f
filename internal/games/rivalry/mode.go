package rivalry

import (
	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/registry"
)

// Mode is Space Rivalry against a remote opponent.
type Mode struct{}

func (Mode) ID() string    { return "rivalry" }
func (Mode) Title() string { return "Space Rivalry" }
func (Mode) Online() bool  { return true }

// Build wires the input relay. The server simulates, so neither role runs
// physics.
func (Mode) Build(env registry.Env) (registry.Match, error) {
	role := env.Session.Role()
	id := env.Identity()
	return registry.Match{
		Machine:    match.New(match.RulesFromConfig(env.Config.Match), id, role),
		Policy:     authority.New(role, authority.ModeRivalry),
		Controller: NewClient(env.Config.Rivalry, id.Local),
		URL:        env.Config.RivalryURL(env.Session.GameID.String(), env.Session.Username),
		Init:       env.Init(),
	}, nil
}

// Register the mode with the registry
func init() {
	registry.Register("rivalry", func() registry.Mode { return Mode{} })
}
