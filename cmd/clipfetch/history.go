package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clipfetch/pkg/history"
	"clipfetch/pkg/ui"
)

var (
	historyClear bool
	historyCount int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently fetched accounts",
	Long: `Show the accounts recent fetch runs queried successfully, most
recent first. The history is capped (stores.history_limit in the
configuration) and kept in a JSON file next to the account list.`,
	Example: `  # The full history
  clipfetch history

  # Only the last five
  clipfetch history -n 5

  # Start over
  clipfetch history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "empty the history")
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 0, "show at most this many entries (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := history.NewStore(cfg.Stores.HistoryFile, cfg.Stores.HistoryLimit)
	if err != nil {
		ui.PrintError("Failed to open the history store", err.Error())
		os.Exit(1)
	}

	if historyClear {
		if err := store.Clear(); err != nil {
			ui.PrintError("Failed to clear history", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("History cleared")
		return
	}

	entries := store.Recent(historyCount)
	if len(entries) == 0 {
		ui.PrintWarning("History is empty")
		return
	}

	for i, name := range entries {
		fmt.Printf("  %2d. %s\n", i+1, name)
	}
}
