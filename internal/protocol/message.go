// Package protocol defines the JSON messages exchanged with the match server.
// Every message is an object with a "type" discriminator; each variant is a
// distinct Go type so dispatchers can switch on it exhaustively.
package protocol

import (
	"encoding/json"

	"github.com/vovakirdan/rally/internal/core"
)

// Type is the wire discriminator.
type Type string

// Outbound types.
const (
	TypeInit          Type = "init"
	TypeMouseMove     Type = "mouse_move"
	TypeBallPosition  Type = "ball_position"
	TypeScoreUpdate   Type = "score_update"
	TypeGameWon       Type = "game_won"
	TypeMatchComplete Type = "match_complete"
	TypePlayerInput   Type = "player_input"
)

// Inbound-only types.
const (
	TypeGameState          Type = "game_state"
	TypePlayerDisconnected Type = "player_disconnected"
	TypePlayerReconnected  Type = "player_reconnected"
	TypeConnectionWarning  Type = "connection_warning"
	TypeGameEndedByForfeit Type = "game_ended_by_forfeit"
	TypeGameEnded          Type = "game_ended"
)

// Message is implemented by every wire variant.
type Message interface {
	MessageType() Type
}

// Vec2 is a 2D wire vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a 3D wire vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromCore converts a simulation vector.
func FromCore(v core.Vec3) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Core converts to a simulation vector.
func (v Vec3) Core() core.Vec3 {
	return core.V3(v.X, v.Y, v.Z)
}

// Pair carries a per-player value keyed the way the server expects.
type Pair struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Init pairs the socket with the session. Sent immediately on open.
type Init struct {
	Username  string `json:"username"`
	Opponent  string `json:"opponent"`
	IsPlayer1 bool   `json:"isPlayer1"`
}

// MouseMove relays the pointer for paddle and camera sync.
type MouseMove struct {
	MousePosition Vec2 `json:"mouse_position"`
}

// BallPosition is broadcast by the authority every frame.
type BallPosition struct {
	BallPosition Vec3 `json:"ball_position"`
}

// ScoreUpdate is broadcast by the authority on every point.
type ScoreUpdate struct {
	Scores         Pair   `json:"scores"`
	ScoringPlayer  string `json:"scoringPlayer"`
	PlayerGamesWon int    `json:"playerGamesWon"`
	AIGamesWon     int    `json:"aiGamesWon"`
}

// GameWon is broadcast by the authority when a set is won.
type GameWon struct {
	Winner  string `json:"winner"`
	Matches Pair   `json:"matches"`
}

// MatchComplete is broadcast by the authority when the match is decided.
type MatchComplete struct {
	Winner     string `json:"winner"`
	FinalScore Pair   `json:"finalScore"`
	Forfeit    bool   `json:"forfeit"`
}

// Input values for PlayerInput.
const (
	InputLeft  = "left"
	InputRight = "right"
	InputShoot = "shoot"
)

// PlayerInput relays Rivalry ship controls.
type PlayerInput struct {
	Input string `json:"input"`
}

// GameState is a full snapshot. The payload shape depends on the game mode,
// so it is kept raw and decoded by the mode controller.
type GameState struct {
	State json.RawMessage `json:"state"`
}

// Header holds fields every snapshot payload may carry.
type Header struct {
	Winner string `json:"winner,omitempty"`
}

// Header decodes the mode-independent part of the snapshot.
func (m GameState) Header() Header {
	var h Header
	if len(m.State) > 0 {
		_ = json.Unmarshal(m.State, &h) //nolint:errcheck // missing header fields are fine
	}
	return h
}

// Decode unmarshals the snapshot payload into v.
func (m GameState) Decode(v any) error {
	if len(m.State) == 0 {
		return ErrMalformed
	}
	return json.Unmarshal(m.State, v)
}

// Notice carries a human-readable message about the peer connection.
type Notice struct {
	Message string `json:"message"`
}

// PlayerDisconnected reports the opponent's socket dropped.
type PlayerDisconnected struct{ Notice }

// PlayerReconnected reports the opponent is back.
type PlayerReconnected struct{ Notice }

// ConnectionWarning is an advisory about link quality.
type ConnectionWarning struct{ Notice }

// EndState is the payload of the server's end-of-match messages.
type EndState struct {
	Winner            string `json:"winner"`
	DisconnectForfeit bool   `json:"disconnect_forfeit"`
}

// GameEndedByForfeit is declared by the server when a peer forfeits.
type GameEndedByForfeit struct {
	State EndState `json:"state"`
}

// GameEnded is the server's final confirmation of the result.
type GameEnded struct {
	State EndState `json:"state"`
}

func (Init) MessageType() Type               { return TypeInit }
func (MouseMove) MessageType() Type          { return TypeMouseMove }
func (BallPosition) MessageType() Type       { return TypeBallPosition }
func (ScoreUpdate) MessageType() Type        { return TypeScoreUpdate }
func (GameWon) MessageType() Type            { return TypeGameWon }
func (MatchComplete) MessageType() Type      { return TypeMatchComplete }
func (PlayerInput) MessageType() Type        { return TypePlayerInput }
func (GameState) MessageType() Type          { return TypeGameState }
func (PlayerDisconnected) MessageType() Type { return TypePlayerDisconnected }
func (PlayerReconnected) MessageType() Type  { return TypePlayerReconnected }
func (ConnectionWarning) MessageType() Type  { return TypeConnectionWarning }
func (GameEndedByForfeit) MessageType() Type { return TypeGameEndedByForfeit }
func (GameEnded) MessageType() Type          { return TypeGameEnded }
