package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/rally/internal/core"
)

func TestBootstrapMissingHandoff(t *testing.T) {
	_, err := Bootstrap(NewMemoryHandoff())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}

	if _, err := Bootstrap(nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("nil store: expected ErrNoSession, got %v", err)
	}
}

func TestBootstrapConsumesOnce(t *testing.T) {
	h := NewMemoryHandoff()
	h.Put(Descriptor{GameID: "17", Username: "ann", Opponent: "bob", IsPlayer1: true})

	d, err := Bootstrap(h)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if d.GameID != "17" || d.Opponent != "bob" {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if d.Role() != core.RoleAuthority {
		t.Errorf("player1 should be authority, got %s", d.Role())
	}

	// Re-entering without a fresh descriptor fails again.
	if _, err := Bootstrap(h); !errors.Is(err, ErrNoSession) {
		t.Errorf("second Bootstrap: expected ErrNoSession, got %v", err)
	}
}

func TestBootstrapRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"no game id", Descriptor{Username: "ann"}},
		{"blank username", Descriptor{GameID: "1", Username: "  "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMemoryHandoff()
			h.Put(tc.d)
			if _, err := Bootstrap(h); !errors.Is(err, ErrNoSession) {
				t.Errorf("expected ErrNoSession, got %v", err)
			}
		})
	}
}

func TestFileHandoffJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.json")
	body := `{"gameId":"99","username":"bob","opponent":"ann","isPlayer1":false}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := Bootstrap(FileHandoff{Path: path})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if d.GameID != "99" || d.Username != "bob" || d.IsPlayer1 {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if d.Role() != core.RoleSpectator {
		t.Errorf("player2 should be spectator, got %s", d.Role())
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("handoff file should be removed after Take")
	}
	if _, err := Bootstrap(FileHandoff{Path: path}); !errors.Is(err, ErrNoSession) {
		t.Errorf("consumed file: expected ErrNoSession, got %v", err)
	}
}

func TestFileHandoffNumericGameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.json")
	if err := os.WriteFile(path, []byte(`{"gameId":42,"username":"ann","opponent":"bob","isPlayer1":true}`), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := Bootstrap(FileHandoff{Path: path})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if d.GameID != "42" {
		t.Errorf("GameID = %q, expected \"42\"", d.GameID)
	}
}

func TestFileHandoffYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.yaml")
	body := "gameId: g-1\nusername: ann\nopponent: bob\nisPlayer1: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := Bootstrap(FileHandoff{Path: path})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if d.GameID != "g-1" || !d.IsPlayer1 {
		t.Errorf("unexpected descriptor %+v", d)
	}
}

func TestFileHandoffMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.json")
	if err := os.WriteFile(path, []byte(`{"gameId":`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Bootstrap(FileHandoff{Path: path}); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for malformed file, got %v", err)
	}
}
