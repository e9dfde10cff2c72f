// rally is a terminal client for real-time Pong and Space Rivalry matches.
//
// Usage:
//
//	rally list               - List available modes
//	rally play               - Join the match assigned by matchmaking
//	rally local [mode]       - Play a local two-player match
//	rally history            - Browse finished matches
//	rally serve [mode]       - Host local matches over SSH
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.rally/config.yaml)
//	--log-level <level> - debug, info, warn or error (default: info)
//	--log-file <path>   - Write logs to a file while a match is on screen
//	--db <path>         - Match history database (default: ~/.rally/history.db)
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/storage"

	// Import modes to register them
	_ "github.com/vovakirdan/rally/internal/games/pong"
	_ "github.com/vovakirdan/rally/internal/games/rivalry"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
	flagDBPath   string
	flagFPS      int
	flagSeed     int64

	cfg     config.Config
	logger  *log.Logger
	logFile *os.File
)

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rally",
	Short: "Rally - real-time Pong and Space Rivalry in your terminal",
	Long: `Rally connects to a match assigned by the lobby's matchmaking and plays
it in the terminal: 3D table-tennis Pong rendered top-down, or the Space
Rivalry shooter. Pong can also be played locally by two players on one
keyboard.

Available commands:
  list     - Show all available modes
  play     - Join an assigned online match
  local    - Local two-player match
  history  - Browse finished matches
  serve    - Host local matches over SSH

Examples:
  rally play --handoff ~/.rally/handoff.json
  rally play --game-id 42 --username ann --opponent bob --player1
  rally play --mode rivalry --game-id 7 --username bob --opponent ann
  rally local
  rally history --user ann
  rally serve pong-quadra`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file used while a match is on screen")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.rally/history.db", "Path to match history database")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed for net jitter (0 = random based on time)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(localCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the config and creates the logger shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	var out io.Writer = os.Stderr
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		logFile = f
		out = f
	}
	logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "rally",
		Level:           level,
	})

	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagFPS > 0 {
		cfg.Runtime.FPS = flagFPS
	}
	logger.Debug("config loaded", "server", cfg.Server.BaseURL, "fps", cfg.Runtime.FPS)
	return nil
}

// quietLogs stops stderr logging while the TUI owns the terminal.
// A --log-file keeps receiving everything.
func quietLogs() {
	if logFile == nil {
		logger.SetOutput(io.Discard)
	}
}

func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}

// openStore opens the history database. Matches still run without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open history database", "error", err)
		return nil
	}
	return store
}
