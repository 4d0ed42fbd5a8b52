package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"clipfetch/pkg/accounts"
	"clipfetch/pkg/pipeline"
	"clipfetch/pkg/status"
	"clipfetch/pkg/ui"
)

var (
	// Batch command flags
	batchDate      string
	batchYesterday bool
	batchOutput    string
	batchChrome    string
	batchTool      string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Download clips for every saved account",
	Long: `Batch runs the fetch pipeline for every account on the saved list
('clipfetch accounts'), one after another, for a single date.

The download tool is verified once up front. An account whose page
fails to scrape is skipped and the batch moves on; if the download tool
disappears mid-run the whole batch stops.`,
	Example: `  # Everyone on the list, today's clips
  clipfetch batch

  # Yesterday's clips for the whole list
  clipfetch batch --yesterday

  # A specific day into a custom directory
  clipfetch batch --date 20240105 --output /srv/clips`,
	Args: cobra.NoArgs,
	Run:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Local flags for batch command
	batchCmd.Flags().StringVarP(&batchDate, "date", "d", "", "clip date in YYYYMMDD form (default: today)")
	batchCmd.Flags().BoolVar(&batchYesterday, "yesterday", false, "fetch yesterday's clips")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "base output directory")
	batchCmd.Flags().StringVar(&batchChrome, "chrome", "", "path to the Chrome/Chromium binary")
	batchCmd.Flags().StringVar(&batchTool, "tool", "", "download tool to run (default: yt-dlp)")
}

func runBatch(cmd *cobra.Command, args []string) {
	extra := make(map[string]interface{})
	if batchOutput != "" {
		extra["output"] = batchOutput
	}
	if batchChrome != "" {
		extra["chrome"] = batchChrome
	}
	if batchTool != "" {
		extra["tool"] = batchTool
	}

	cfg, err := loadConfig(extra)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := accounts.NewStore(cfg.Stores.AccountsFile)
	if err != nil {
		ui.PrintError("Failed to open the accounts store", err.Error())
		os.Exit(1)
	}

	targets := store.List()
	if len(targets) == 0 {
		ui.PrintWarning("No accounts configured", "add one with 'clipfetch accounts add <name>'")
		return
	}

	// Saved accounts without their own cap inherit the global one.
	if cfg.Download.MaxDownloads > 0 {
		for i := range targets {
			if targets[i].MaxDownloads == 0 {
				targets[i].MaxDownloads = cfg.Download.MaxDownloads
			}
		}
	}

	date, err := resolveDate(batchDate, batchYesterday)
	if err != nil {
		ui.PrintError("Invalid date", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Accounts", strconv.Itoa(len(targets)))
	ui.PrintInfo("Date", date)

	p := buildPipeline(cfg)
	render := ui.NewRenderer(os.Stdout, noColor)

	var batch pipeline.BatchSummary
	var runErr error
	runWithStatus("batch "+date, render, func(sink status.Sink) {
		batch, runErr = p.RunBatch(cmd.Context(), targets, date, sink)
	})

	notifier := ui.NewNotifier(cfg.Notifications.Enabled && cfg.Notifications.OnComplete)
	if runErr != nil {
		notifier.Send("Clip Fetcher", "Batch aborted: "+batch.AbortReason)
		os.Exit(1)
	}
	notifier.Send("Clip Fetcher", fmt.Sprintf("Batch complete: %d clip(s) across %d account(s).", batch.TotalDownloaded, batch.AccountsProcessed))
}
