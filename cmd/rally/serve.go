package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/platform/tui"
	"github.com/vovakirdan/rally/internal/registry"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve [mode]",
	Short: "Host local matches over SSH",
	Long: `Start an SSH server that hosts a local mode. Every connection gets its
own match on the connecting terminal, and finished matches go to the
server's history database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.rally/host_key

Examples:
  rally serve                            # pong-local on :23234
  rally serve pong-quadra --ssh :2222
  rally serve --host-key ./my_host_key

Players connect with:
  ssh localhost -p 23234`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, args []string) error {
	id := "pong-local"
	if len(args) == 1 {
		id = args[0]
	}

	mode, err := registry.Create(id)
	if err != nil {
		return fmt.Errorf("%w (run 'rally list' to see available modes)", err)
	}
	if mode.Online() {
		return fmt.Errorf("%s needs a match assignment and cannot be hosted", mode.ID())
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	newSession := func(user string) (*multiplayer.Runtime, int, error) {
		built, err := mode.Build(registry.Env{Config: cfg, Seed: time.Now().UnixNano()})
		if err != nil {
			return nil, 0, fmt.Errorf("cannot build %s: %w", mode.ID(), err)
		}
		opts := multiplayer.Options{
			Mode:       mode.ID(),
			Machine:    built.Machine,
			Policy:     built.Policy,
			Controller: built.Controller,
			Logger:     logger.With("user", user),
			FPS:        cfg.Runtime.FPS,
		}
		if store != nil {
			opts.Saver = store
		}
		return multiplayer.New(opts), built.Seats, nil
	}

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = flagSSHAddr
	srvCfg.HostKeyPath = flagHostKey
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	srvCfg.NewSession = newSession
	srvCfg.Logger = logger

	server, err := tui.NewSSHServer(srvCfg)
	if err != nil {
		return err
	}

	fmt.Printf("Hosting %s over SSH on %s\n", mode.ID(), server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe(cmd.Context())
}
