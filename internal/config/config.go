// Package config provides YAML-based configuration loading for the rally
// client: server endpoints, reconnect policy, match rules and physics tuning.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the full client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Match     MatchConfig     `yaml:"match"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Rivalry   RivalryConfig   `yaml:"rivalry"`
	Runtime   RuntimeSettings `yaml:"runtime"`
}

// ServerConfig locates the backend websocket endpoints.
type ServerConfig struct {
	BaseURL          string        `yaml:"base_url"`     // ws://host:port or wss://host
	PongPath         string        `yaml:"pong_path"`    // format string taking the game id
	RivalryPath      string        `yaml:"rivalry_path"` // format string taking the game id
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// ReconnectConfig bounds automatic reconnection after an unclean close.
type ReconnectConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Backoff     string        `yaml:"backoff"` // "fixed", "linear" or "exponential"
}

// MatchConfig holds scoring rules and disconnect timings.
type MatchConfig struct {
	MaxScore        int           `yaml:"max_score"`
	MaxSets         int           `yaml:"max_sets"`
	DisconnectGrace time.Duration `yaml:"disconnect_grace"`
	ReconnectSettle time.Duration `yaml:"reconnect_settle"`
}

// PhysicsConfig tunes the ball simulation. Lengths are in table units.
type PhysicsConfig struct {
	Gravity           float64       `yaml:"gravity"`
	Drag              float64       `yaml:"drag"`
	Restitution       float64       `yaml:"restitution"`
	MinHeight         float64       `yaml:"min_height"`
	CollisionCooldown time.Duration `yaml:"collision_cooldown"`

	Ball   BallConfig   `yaml:"ball"`
	Table  TableConfig  `yaml:"table"`
	Net    NetConfig    `yaml:"net"`
	Paddle PaddleConfig `yaml:"paddle"`
	Serve  ServeConfig  `yaml:"serve"`
	Hit    HitConfig    `yaml:"hit"`
}

// BallConfig describes the ball body.
type BallConfig struct {
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
}

// TableConfig describes the playing surface.
type TableConfig struct {
	HalfWidth  float64 `yaml:"half_width"`
	HalfLength float64 `yaml:"half_length"`
	Height     float64 `yaml:"height"`
	Thickness  float64 `yaml:"thickness"`
	OutMargin  float64 `yaml:"out_margin"`
}

// NetConfig describes the net and how it deflects the ball.
type NetConfig struct {
	Height    float64 `yaml:"height"`
	Thickness float64 `yaml:"thickness"`
	Damping   float64 `yaml:"damping"`
	Jitter    float64 `yaml:"jitter"`
}

// PaddleConfig describes both paddles.
type PaddleConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Depth     float64 `yaml:"depth"`
	Distance  float64 `yaml:"distance"` // |z| of each paddle from the net
	Speed     float64 `yaml:"speed"`    // keyboard movement, units per second
	MaxReachX float64 `yaml:"max_reach_x"`
	MinY      float64 `yaml:"min_y"`
	MaxY      float64 `yaml:"max_y"`
}

// ServeConfig places the ball after every point.
type ServeConfig struct {
	Height   float64 `yaml:"height"`
	OffsetZ  float64 `yaml:"offset_z"`
	ImpulseY float64 `yaml:"impulse_y"`
	ImpulseZ float64 `yaml:"impulse_z"`
}

// HitConfig shapes the paddle strike response.
type HitConfig struct {
	ForceX float64 `yaml:"force_x"` // forceX = (ratio - 0.5) * ForceX
	LogY   float64 `yaml:"log_y"`   // forceY = log(h/ph + 1) * LogY + BaseY
	BaseY  float64 `yaml:"base_y"`
	LogZ   float64 `yaml:"log_z"` // forceZ = log(h/ph + 1) * LogZ + BaseZ
	BaseZ  float64 `yaml:"base_z"`
}

// RivalryConfig tunes the Space Rivalry client.
type RivalryConfig struct {
	InputRate int `yaml:"input_rate"` // player_input messages per second while a key is held
}

// RuntimeSettings holds frame loop settings.
type RuntimeSettings struct {
	FPS int `yaml:"fps"`
}

// Validate checks values that would make the client misbehave.
func (c Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("config: server.base_url is required")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("config: reconnect.max_attempts must be >= 0, got %d", c.Reconnect.MaxAttempts)
	}
	switch c.Reconnect.Backoff {
	case "", "fixed", "linear", "exponential":
	default:
		return fmt.Errorf("config: unknown reconnect.backoff %q", c.Reconnect.Backoff)
	}
	if c.Match.MaxScore <= 0 {
		return fmt.Errorf("config: match.max_score must be positive, got %d", c.Match.MaxScore)
	}
	if c.Match.MaxSets <= 0 {
		return fmt.Errorf("config: match.max_sets must be positive, got %d", c.Match.MaxSets)
	}
	if c.Physics.Drag < 0 || c.Physics.Drag > 1 {
		return fmt.Errorf("config: physics.drag must be within [0, 1], got %v", c.Physics.Drag)
	}
	if c.Physics.Restitution < 0 || c.Physics.Restitution >= 1 {
		return fmt.Errorf("config: physics.restitution must be within [0, 1), got %v", c.Physics.Restitution)
	}
	if c.Runtime.FPS <= 0 {
		return fmt.Errorf("config: runtime.fps must be positive, got %d", c.Runtime.FPS)
	}
	return nil
}

// PongURL returns the websocket URL for a Pong match.
func (c Config) PongURL(gameID, username string) string {
	return c.Server.endpoint(c.Server.PongPath, gameID, username)
}

// RivalryURL returns the websocket URL for a Space Rivalry match.
func (c Config) RivalryURL(gameID, username string) string {
	return c.Server.endpoint(c.Server.RivalryPath, gameID, username)
}

func (s ServerConfig) endpoint(pathFormat, gameID, username string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	path := fmt.Sprintf(pathFormat, url.PathEscape(gameID))
	return base + path + "?username=" + url.QueryEscape(username)
}
