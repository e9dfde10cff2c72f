package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/rally.yaml
var defaultRallyYAML []byte

// Default returns the hard-coded configuration. It mirrors defaults/rally.yaml
// and is used when the embedded file cannot be parsed.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:          "ws://localhost:8000",
			PongPath:         "/ws/game/%s/",
			RivalryPath:      "/ws/space-rivalry/%s/",
			HandshakeTimeout: 10 * time.Second,
		},
		Reconnect: ReconnectConfig{
			MaxAttempts: 1,
			BaseDelay:   2 * time.Second,
			Backoff:     "fixed",
		},
		Match: MatchConfig{
			MaxScore:        11,
			MaxSets:         3,
			DisconnectGrace: 3 * time.Second,
			ReconnectSettle: 500 * time.Millisecond,
		},
		Physics: DefaultPhysics(),
		Rivalry: RivalryConfig{
			InputRate: 20,
		},
		Runtime: RuntimeSettings{
			FPS: 60,
		},
	}
}

// DefaultPhysics returns the default ball simulation tuning.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:           -9.8,
		Drag:              0.995,
		Restitution:       0.7,
		MinHeight:         0.2,
		CollisionCooldown: 100 * time.Millisecond,
		Ball: BallConfig{
			Radius: 0.2,
			Mass:   1,
		},
		Table: TableConfig{
			HalfWidth:  3.5,
			HalfLength: 6.14,
			Height:     0,
			Thickness:  0.3,
			OutMargin:  3,
		},
		Net: NetConfig{
			Height:    0.6,
			Thickness: 0.1,
			Damping:   0.5,
			Jitter:    0.5,
		},
		Paddle: PaddleConfig{
			Width:     1.2,
			Height:    1.2,
			Depth:     0.2,
			Distance:  7,
			Speed:     6,
			MaxReachX: 4.5,
			MinY:      0,
			MaxY:      3,
		},
		Serve: ServeConfig{
			Height:   1.5,
			OffsetZ:  8,
			ImpulseY: 2,
			ImpulseZ: 8,
		},
		Hit: HitConfig{
			ForceX: 4,
			LogY:   3,
			BaseY:  2,
			LogZ:   4,
			BaseZ:  8,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultRallyYAML
}
