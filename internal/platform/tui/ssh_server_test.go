package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/rally/internal/multiplayer"
)

func TestNewSSHServer(t *testing.T) {
	build := func(string) (*multiplayer.Runtime, int, error) { return nil, 2, nil }

	tests := []struct {
		name    string
		build   NewSessionFunc
		wantErr bool
	}{
		{"with builder", build, false},
		{"without builder", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSSHServerConfig()
			cfg.Address = "127.0.0.1:0"
			cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")
			cfg.NewSession = tt.build

			srv, err := NewSSHServer(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSSHServer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer srv.Shutdown()

			if srv.Addr() != cfg.Address {
				t.Errorf("Addr() = %q, want %q", srv.Addr(), cfg.Address)
			}
			if _, err := os.Stat(cfg.HostKeyPath); err != nil {
				t.Errorf("host key not generated: %v", err)
			}
		})
	}
}
