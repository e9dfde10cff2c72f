package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rally/internal/platform/tui"
	"github.com/vovakirdan/rally/internal/storage"
)

var (
	flagHistoryUser  string
	flagHistoryLimit int
	flagHistoryPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse finished matches",
	Long: `Show the matches recorded by this client, newest first.

Examples:
  rally history
  rally history --user ann
  rally history --user ann --plain --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryUser, "user", "", "Only matches played as this username")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of matches to print with --plain")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print a plain table instead of the interactive view")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open history database: %w", err)
	}
	defer store.Close()

	if !flagHistoryPlain {
		width, height := terminalSize()
		quietLogs()
		return tui.RunHistory(store, flagHistoryUser, width, height)
	}

	var records []storage.MatchRecord
	if flagHistoryUser != "" {
		records, err = store.PlayerHistory(flagHistoryUser, flagHistoryLimit)
	} else {
		records, err = store.RecentMatches(flagHistoryLimit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-10s  %-12s  %-12s  %-5s  %-9s  %s\n", "Date", "Mode", "Player", "Opponent", "Sets", "Ended", "Winner")
	fmt.Printf("  %-16s  %-10s  %-12s  %-12s  %-5s  %-9s  %s\n", "----", "----", "------", "--------", "----", "-----", "------")
	for _, r := range records {
		fmt.Printf("  %-16s  %-10s  %-12s  %-12s  %-5s  %-9s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, r.Username, r.Opponent,
			fmt.Sprintf("%d-%d", r.Score1, r.Score2), r.EndReason, r.Winner)
	}

	if flagHistoryUser != "" {
		stats, err := store.Stats(flagHistoryUser)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Printf("%s: %d played, %d won, %d decided by forfeit\n",
			stats.Username, stats.Played, stats.Won, stats.Forfeits)
	}
	return nil
}
