package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rally/internal/registry"
)

var localCmd = &cobra.Command{
	Use:   "local [mode]",
	Short: "Play a local match on one keyboard",
	Long: `Play on one keyboard with no server. Every paddle is simulated
locally and the bottom side is player1. pong-local seats two players,
pong-quadra seats two pairs.

Controls:
  Arrows  - Bottom paddle (up/down raise and lower)
  WASD    - Top paddle
  IJKL    - Bottom partner (pong-quadra)
  TFGH    - Top partner (pong-quadra)
  P       - Pause
  Q/Esc   - Quit

Examples:
  rally local
  rally local pong-quadra
  rally local pong-local --seed 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocal,
}

func runLocal(cmd *cobra.Command, args []string) error {
	id := "pong-local"
	if len(args) == 1 {
		id = args[0]
	}

	mode, err := registry.Create(id)
	if err != nil {
		return fmt.Errorf("%w (run 'rally list' to see available modes)", err)
	}
	if mode.Online() {
		return fmt.Errorf("%s needs a server, use 'rally play --mode %s'", mode.ID(), mode.ID())
	}

	return runMatch(cmd.Context(), mode, registry.Env{Config: cfg, Seed: seed()})
}
