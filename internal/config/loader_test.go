package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}

	def := Default()
	if cfg != def {
		t.Errorf("embedded YAML and Default() disagree:\nyaml: %+v\ncode: %+v", cfg, def)
	}
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse([]byte("match:\n  max_score: 21\nreconnect:\n  base_delay: 750ms\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Match.MaxScore != 21 {
		t.Errorf("MaxScore = %d, expected 21", cfg.Match.MaxScore)
	}
	if cfg.Reconnect.BaseDelay != 750*time.Millisecond {
		t.Errorf("BaseDelay = %v, expected 750ms", cfg.Reconnect.BaseDelay)
	}
	if cfg.Match.MaxSets != 3 {
		t.Errorf("MaxSets should keep default 3, got %d", cfg.Match.MaxSets)
	}
	if cfg.Physics.Ball.Radius != 0.2 {
		t.Errorf("Ball radius should keep default 0.2, got %v", cfg.Physics.Ball.Radius)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rally.yaml")
	if err := os.WriteFile(path, []byte("server:\n  base_url: wss://example.test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvServerURL, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.BaseURL != "wss://example.test" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rally.yaml")
	if err := os.WriteFile(path, []byte("runtime:\n  fps: 30\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvServerURL, "ws://override:9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.BaseURL != "ws://override:9000" {
		t.Errorf("env override not applied, got %q", cfg.Server.BaseURL)
	}
	if cfg.Runtime.FPS != 30 {
		t.Errorf("FPS = %d, expected 30", cfg.Runtime.FPS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, false},
		{"negative attempts", func(c *Config) { c.Reconnect.MaxAttempts = -1 }, false},
		{"bad backoff", func(c *Config) { c.Reconnect.Backoff = "random" }, false},
		{"zero max score", func(c *Config) { c.Match.MaxScore = 0 }, false},
		{"drag above one", func(c *Config) { c.Physics.Drag = 1.5 }, false},
		{"lossless restitution", func(c *Config) { c.Physics.Restitution = 1 }, false},
		{"zero fps", func(c *Config) { c.Runtime.FPS = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEndpoints(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "wss://arena.example/"

	if got := cfg.PongURL("42", "ann lee"); got != "wss://arena.example/ws/game/42/?username=ann+lee" {
		t.Errorf("PongURL = %q", got)
	}
	if got := cfg.RivalryURL("g-7", "bob"); got != "wss://arena.example/ws/space-rivalry/g-7/?username=bob" {
		t.Errorf("RivalryURL = %q", got)
	}
}
