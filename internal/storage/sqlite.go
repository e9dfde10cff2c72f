// Package storage provides SQLite-based persistence for finished matches.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/rally/internal/multiplayer"
)

// Store manages the SQLite database connection for the match history.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match as seen by this client.
type MatchRecord struct {
	ID        string // uuid assigned on save
	GameID    string
	Mode      string
	Username  string
	Opponent  string
	Role      string
	Score1    int // sets won by player1
	Score2    int // sets won by player2
	Winner    string
	EndReason string // "completed" or "forfeit"
	Duration  int    // seconds
	CreatedAt time.Time
}

// Won reports whether the local player won.
func (r MatchRecord) Won() bool {
	return r.Winner != "" && r.Winner == r.Username
}

// PlayerStats aggregates a player's history.
type PlayerStats struct {
	Username string
	Played   int
	Won      int
	Forfeits int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			username TEXT NOT NULL,
			opponent TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_game_id ON matches(game_id);
		CREATE INDEX IF NOT EXISTS idx_matches_username ON matches(username);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match and returns its id.
func (s *Store) SaveMatch(r MatchRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO matches
		 (id, game_id, mode, username, opponent, role, score1, score2, winner, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameID, r.Mode, r.Username, r.Opponent, r.Role,
		r.Score1, r.Score2, nullable(r.Winner), r.EndReason, r.Duration,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save match: %w", err)
	}
	return r.ID, nil
}

const selectMatch = `SELECT id, game_id, mode, username, opponent, role,
	score1, score2, winner, end_reason, duration_secs, created_at
	FROM matches`

// MatchByID retrieves a match by its id. Returns nil if absent.
func (s *Store) MatchByID(id string) (*MatchRecord, error) {
	r, err := scanMatch(s.db.QueryRow(selectMatch+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &r, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(selectMatch+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// PlayerHistory retrieves the matches played as username, newest first.
func (s *Store) PlayerHistory(username string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(selectMatch+` WHERE username = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, username, limit)
}

// Stats aggregates username's history.
func (s *Store) Stats(username string) (PlayerStats, error) {
	stats := PlayerStats{Username: username}
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = username THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN end_reason = 'forfeit' THEN 1 ELSE 0 END), 0)
		 FROM matches WHERE username = ?`,
		username,
	).Scan(&stats.Played, &stats.Won, &stats.Forfeits)
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	return stats, nil
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var r MatchRecord
	var winner sql.NullString
	var createdAt any
	err := row.Scan(
		&r.ID, &r.GameID, &r.Mode, &r.Username, &r.Opponent, &r.Role,
		&r.Score1, &r.Score2, &winner, &r.EndReason, &r.Duration, &createdAt,
	)
	if err != nil {
		return r, err
	}
	r.Winner = winner.String

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			r.CreatedAt = parsed
		}
	}
	return r, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the runtime to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		GameID:    data.GameID,
		Mode:      data.Mode,
		Username:  data.Username,
		Opponent:  data.Opponent,
		Role:      data.Role,
		Score1:    data.Score1,
		Score2:    data.Score2,
		Winner:    data.Winner,
		EndReason: data.EndReason,
		Duration:  data.DurationSecs,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)
