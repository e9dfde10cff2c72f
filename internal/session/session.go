// Package session reads the match assignment handed over by matchmaking and
// turns it into an immutable Descriptor for the rest of the client.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/rally/internal/core"
)

// ErrNoSession is returned when no match assignment is available. Callers
// must send the user back to matchmaking and build nothing else.
var ErrNoSession = errors.New("session: no match assignment, return to matchmaking")

// Descriptor identifies one match. It never changes after Bootstrap.
type Descriptor struct {
	GameID    core.ID `json:"gameId" yaml:"gameId"`
	Username  string  `json:"username" yaml:"username"`
	Opponent  string  `json:"opponent" yaml:"opponent"`
	IsPlayer1 bool    `json:"isPlayer1" yaml:"isPlayer1"`
}

// Role derives the authority role from the player-slot flag.
func (d Descriptor) Role() core.Role {
	return core.RoleFor(d.IsPlayer1)
}

func (d Descriptor) validate() error {
	if strings.TrimSpace(d.GameID.String()) == "" {
		return fmt.Errorf("%w: missing gameId", ErrNoSession)
	}
	if strings.TrimSpace(d.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrNoSession)
	}
	return nil
}

// HandoffStore hands over a match assignment. Take consumes it: a second Take
// without a fresh Put must report ok=false.
type HandoffStore interface {
	Take() (Descriptor, bool, error)
}

// Bootstrap reads and validates the match assignment.
func Bootstrap(store HandoffStore) (Descriptor, error) {
	if store == nil {
		return Descriptor{}, ErrNoSession
	}
	d, ok, err := store.Take()
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if !ok {
		return Descriptor{}, ErrNoSession
	}
	if err := d.validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// MemoryHandoff is an in-process handoff slot.
type MemoryHandoff struct {
	mu      sync.Mutex
	pending *Descriptor
}

// NewMemoryHandoff creates an empty handoff slot.
func NewMemoryHandoff() *MemoryHandoff {
	return &MemoryHandoff{}
}

// Put stores a fresh assignment, replacing any unconsumed one.
func (h *MemoryHandoff) Put(d Descriptor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = &d
}

// Take returns the pending assignment and clears the slot.
func (h *MemoryHandoff) Take() (Descriptor, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return Descriptor{}, false, nil
	}
	d := *h.pending
	h.pending = nil
	return d, true, nil
}

// FileHandoff reads an assignment from a JSON or YAML file and removes the
// file once read, so it is consumed exactly once.
type FileHandoff struct {
	Path string
}

// Take reads and deletes the handoff file. A missing file is not an error.
func (h FileHandoff) Take() (Descriptor, bool, error) {
	if h.Path == "" {
		return Descriptor{}, false, nil
	}
	data, err := os.ReadFile(h.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Descriptor{}, false, nil
	}
	if err != nil {
		return Descriptor{}, false, fmt.Errorf("read handoff %s: %w", h.Path, err)
	}
	if err := os.Remove(h.Path); err != nil {
		return Descriptor{}, false, fmt.Errorf("consume handoff %s: %w", h.Path, err)
	}

	var d Descriptor
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return Descriptor{}, false, fmt.Errorf("parse handoff %s: %w", h.Path, err)
	}
	return d, true, nil
}
