package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rally/internal/channel"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/multiplayer"
	"github.com/vovakirdan/rally/internal/platform/tui"
	"github.com/vovakirdan/rally/internal/registry"
	"github.com/vovakirdan/rally/internal/session"
)

var (
	flagMode      string
	flagHandoff   string
	flagGameID    string
	flagUsername  string
	flagOpponent  string
	flagIsPlayer1 bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join the match assigned by matchmaking",
	Long: `Connect to the match the lobby assigned and play it.

The assignment comes from a handoff file written by matchmaking (JSON or
YAML with gameId, username, opponent and isPlayer1). The file is deleted
once read. Without --handoff the assignment is taken from flags.

Player1 runs the ball physics and is the source of truth for scoring;
player2 mirrors what player1 sends.

Controls:
  Arrows/WASD - Move paddle or ship (up/down raise and lower the paddle)
  Mouse       - Move paddle
  Space       - Shoot (Space Rivalry)
  Q/Esc       - Leave the match

Examples:
  rally play --handoff ~/.rally/handoff.json
  rally play --game-id 42 --username ann --opponent bob --player1
  rally play --mode rivalry --game-id 7 --username bob --opponent ann`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "pong", "Online mode: pong or rivalry")
	playCmd.Flags().StringVar(&flagHandoff, "handoff", "", "Path to the matchmaking handoff file")
	playCmd.Flags().StringVar(&flagGameID, "game-id", "", "Match id")
	playCmd.Flags().StringVar(&flagUsername, "username", "", "Local player's username")
	playCmd.Flags().StringVar(&flagOpponent, "opponent", "", "Opponent's username")
	playCmd.Flags().BoolVar(&flagIsPlayer1, "player1", false, "Take the player1 seat (runs the physics)")
}

// handoff picks where the match assignment comes from.
func handoff() session.HandoffStore {
	if flagHandoff != "" {
		return session.FileHandoff{Path: flagHandoff}
	}
	if flagGameID == "" && flagUsername == "" {
		return nil
	}
	h := session.NewMemoryHandoff()
	h.Put(session.Descriptor{
		GameID:    core.ID(flagGameID),
		Username:  flagUsername,
		Opponent:  flagOpponent,
		IsPlayer1: flagIsPlayer1,
	})
	return h
}

func runPlay(cmd *cobra.Command, args []string) error {
	mode, err := registry.Create(flagMode)
	if err != nil {
		return fmt.Errorf("%w (run 'rally list' to see available modes)", err)
	}
	if !mode.Online() {
		return fmt.Errorf("%s is a local mode, use 'rally local %s'", mode.ID(), mode.ID())
	}

	desc, err := session.Bootstrap(handoff())
	if errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("%w (pass --handoff or --game-id and --username)", err)
	}
	if err != nil {
		return err
	}

	return runMatch(cmd.Context(), mode, registry.Env{Config: cfg, Session: desc, Seed: seed()})
}

// runMatch builds a mode, runs it on screen and records the result.
func runMatch(ctx context.Context, mode registry.Mode, env registry.Env) error {
	built, err := mode.Build(env)
	if err != nil {
		return fmt.Errorf("cannot build %s: %w", mode.ID(), err)
	}

	opts := multiplayer.Options{
		Mode:       mode.ID(),
		Machine:    built.Machine,
		Policy:     built.Policy,
		Controller: built.Controller,
		Logger:     logger,
		FPS:        cfg.Runtime.FPS,
	}

	if mode.Online() {
		backoff, err := channel.BackoffByName(cfg.Reconnect.Backoff)
		if err != nil {
			return err
		}
		opts.Transport = channel.New(channel.Options{
			URL:    built.URL,
			Init:   built.Init,
			Filter: built.Policy,
			Retry: channel.RetryPolicy{
				MaxAttempts: cfg.Reconnect.MaxAttempts,
				BaseDelay:   cfg.Reconnect.BaseDelay,
				Backoff:     backoff,
			},
			Dialer:   channel.WebsocketDialer{HandshakeTimeout: cfg.Server.HandshakeTimeout},
			Logger:   logger,
			Terminal: built.Machine.Terminal,
		})
		logger.Info("joining match", "mode", mode.ID(), "game", env.Session.GameID,
			"role", built.Policy.Role(), "url", built.URL)
	}

	if store := openStore(); store != nil {
		defer store.Close()
		opts.Saver = store
	}

	width, height := terminalSize()
	quietLogs()
	final, err := tui.Run(ctx, multiplayer.New(opts), built.Seats, width, height)
	if err != nil {
		return fmt.Errorf("error running match: %w", err)
	}

	if ended, ok := final.Ended(); ok {
		fmt.Printf("%s (%s)\n", ended.Result.Headline(), ended.Reason)
	} else {
		fmt.Println("Left the match before it ended.")
	}
	return nil
}
