package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/rally/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveMatch(MatchRecord{
		GameID:    "42",
		Mode:      "pong",
		Username:  "ann",
		Opponent:  "bob",
		Role:      "authority",
		Score1:    2,
		Score2:    1,
		Winner:    "ann",
		EndReason: "completed",
		Duration:  300,
	})
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveMatch() returned an empty id")
	}

	got, err := store.MatchByID(id)
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("match not found")
	}
	if got.GameID != "42" || got.Score1 != 2 || got.Winner != "ann" || !got.Won() || got.Duration != 300 {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestStoreMissingMatch(t *testing.T) {
	store := openTestStore(t)

	got, err := store.MatchByID("nope")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestStoreRecentMatchesLimit(t *testing.T) {
	store := openTestStore(t)

	for _, game := range []string{"1", "2", "3", "4"} {
		if _, err := store.SaveMatch(MatchRecord{GameID: game, Mode: "pong", Username: "ann", Role: "authority", EndReason: "completed"}); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	recent, err := store.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(recent))
	}
	if recent[0].GameID != "4" || recent[1].GameID != "3" {
		t.Errorf("Expected newest first, got %s, %s", recent[0].GameID, recent[1].GameID)
	}
}

func TestStorePlayerHistoryAndStats(t *testing.T) {
	store := openTestStore(t)

	records := []MatchRecord{
		{GameID: "1", Mode: "pong", Username: "ann", Winner: "ann", Role: "authority", EndReason: "completed"},
		{GameID: "2", Mode: "pong", Username: "ann", Winner: "bob", Role: "spectator", EndReason: "forfeit"},
		{GameID: "3", Mode: "rivalry", Username: "ann", Role: "authority", EndReason: "completed"},
		{GameID: "4", Mode: "pong", Username: "bob", Winner: "bob", Role: "authority", EndReason: "completed"},
	}
	for _, r := range records {
		if _, err := store.SaveMatch(r); err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	history, err := store.PlayerHistory("ann", 10)
	if err != nil {
		t.Fatalf("PlayerHistory() failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("Expected 3 matches for ann, got %d", len(history))
	}
	if history[2].Winner != "ann" {
		t.Errorf("oldest match winner = %q", history[2].Winner)
	}
	if history[0].Winner != "" || history[0].Won() {
		t.Errorf("match without a winner read back as %+v", history[0])
	}

	stats, err := store.Stats("ann")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats != (PlayerStats{Username: "ann", Played: 3, Won: 1, Forfeits: 1}) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStoreSavesRuntimeResults(t *testing.T) {
	store := openTestStore(t)

	var saver multiplayer.MatchResultSaver = store
	err := saver.SaveMatchResult(multiplayer.MatchResultData{
		GameID:       "7",
		Mode:         "pong",
		Username:     "bob",
		Opponent:     "ann",
		Role:         "spectator",
		Score1:       0,
		Score2:       0,
		Winner:       "bob",
		EndReason:    "forfeit",
		DurationSecs: 12,
	})
	if err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	recent, err := store.RecentMatches(0)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 1 || recent[0].EndReason != "forfeit" || recent[0].Duration != 12 || !recent[0].Won() {
		t.Errorf("got %+v", recent)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.rally/history.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".rally", "history.db")); err != nil {
		t.Errorf("Database not created under home: %v", err)
	}
}
