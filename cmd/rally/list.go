package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rally/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available modes",
	Long:  `Shows every mode registered in the client.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	modes := registry.List()

	if len(modes) == 0 {
		fmt.Println("No modes available.")
		return nil
	}

	fmt.Println("Available modes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, m := range modes {
		maxIDLen = max(maxIDLen, len(m.ID))
	}

	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "ID", "Where", "Title")
	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "--", "-----", "-----")
	for _, m := range modes {
		where := "local"
		if m.Online {
			where = "online"
		}
		fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, m.ID, where, m.Title)
	}

	fmt.Println()
	fmt.Println("Run 'rally play --mode <id>' for online modes or 'rally local <id>'.")
	return nil
}
