// Package registry provides a global registry of playable modes.
// Modes register themselves in init() functions, allowing the CLI
// to discover and build them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/protocol"
	"github.com/vovakirdan/rally/internal/session"
)

// Mode is a playable game mode.
type Mode interface {
	// ID returns a unique identifier (e.g., "pong", "rivalry").
	// Used for CLI commands and match history.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Online reports whether the mode needs a match assignment and a server.
	Online() bool

	// Build wires one match. Online modes read env.Session.
	Build(env Env) (Match, error)
}

// Env is what a mode needs to build a match.
type Env struct {
	Config  config.Config
	Session session.Descriptor // zero for local modes
	Seed    int64
}

// Identity maps the session onto match seats. Player1 is the authority.
func (e Env) Identity() match.Identity {
	local := match.Player2
	if e.Session.IsPlayer1 {
		local = match.Player1
	}
	return match.Identity{
		GameID:   e.Session.GameID,
		Local:    local,
		Username: e.Session.Username,
		Opponent: e.Session.Opponent,
	}
}

// Init is the handshake sent on every socket open.
func (e Env) Init() protocol.Init {
	return protocol.Init{
		Username:  e.Session.Username,
		Opponent:  e.Session.Opponent,
		IsPlayer1: e.Session.IsPlayer1,
	}
}

// Match is everything the runtime needs for one match.
type Match struct {
	Machine    *match.Machine
	Policy     authority.Policy
	Controller multiplayer.Controller
	URL        string // empty for local play
	Init       protocol.Init
	Seats      int // players sharing the keyboard, 0 online
}

// ModeInfo contains metadata about a registered mode.
type ModeInfo struct {
	ID     string
	Title  string
	Online bool
}

// Factory is a function that creates a new instance of a mode.
type Factory func() Mode

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]ModeInfo)
	mu        sync.RWMutex
)

// Register adds a mode factory to the registry.
// Typically called from a mode's init() function.
// Panics if a mode with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}

	factories[id] = f

	m := f()
	infos[id] = ModeInfo{ID: id, Title: m.Title(), Online: m.Online()}
}

// List returns information about all registered modes, sorted by ID.
func List() []ModeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModeInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a mode by its ID.
// Returns an error if the ID is not registered.
func Create(id string) (Mode, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown mode %q", id)
	}

	return f(), nil
}
