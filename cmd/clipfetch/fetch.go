package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipfetch/pkg/accounts"
	"clipfetch/pkg/pipeline"
	"clipfetch/pkg/status"
	"clipfetch/pkg/twitchtracker"
	"clipfetch/pkg/ui"
)

var (
	// Fetch command flags
	fetchDate      string
	fetchYesterday bool
	fetchMax       int
	fetchOutput    string
	fetchChrome    string
	fetchTool      string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <account>",
	Short: "Download one account's clips for a day",
	Long: `Fetch scrapes the TwitchTracker clips page for the given account and
date, extracts every clip link, and downloads the clips one at a time
with yt-dlp into <output>/<account>/<date>/.

The date defaults to today. Accounts whose page answers are added to
the history list ('clipfetch history').`,
	Example: `  # Today's clips
  clipfetch fetch shroud

  # A specific day
  clipfetch fetch shroud --date 20240105

  # Yesterday's clips, capped at 10, into a custom directory
  clipfetch fetch shroud --yesterday --max 10 --output ~/clips`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Local flags for fetch command
	fetchCmd.Flags().StringVarP(&fetchDate, "date", "d", "", "clip date in YYYYMMDD form (default: today)")
	fetchCmd.Flags().BoolVar(&fetchYesterday, "yesterday", false, "fetch yesterday's clips")
	fetchCmd.Flags().IntVarP(&fetchMax, "max", "m", 0, "cap the number of downloads (0 = everything found)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "base output directory")
	fetchCmd.Flags().StringVar(&fetchChrome, "chrome", "", "path to the Chrome/Chromium binary")
	fetchCmd.Flags().StringVar(&fetchTool, "tool", "", "download tool to run (default: yt-dlp)")
}

func runFetch(cmd *cobra.Command, args []string) {
	account := twitchtracker.SanitizeAccount(strings.TrimSpace(args[0]))

	extra := make(map[string]interface{})
	if fetchOutput != "" {
		extra["output"] = fetchOutput
	}
	if fetchMax > 0 {
		extra["max"] = fetchMax
	}
	if fetchChrome != "" {
		extra["chrome"] = fetchChrome
	}
	if fetchTool != "" {
		extra["tool"] = fetchTool
	}

	cfg, err := loadConfig(extra)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	date, err := resolveDate(fetchDate, fetchYesterday)
	if err != nil {
		ui.PrintError("Invalid date", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Account", account)
	ui.PrintInfo("Date", date)

	p := buildPipeline(cfg)
	target := accounts.Target{Name: account, MaxDownloads: cfg.Download.MaxDownloads}
	render := ui.NewRenderer(os.Stdout, noColor)

	var summary pipeline.Summary
	var runErr error
	runWithStatus("fetch "+account, render, func(sink status.Sink) {
		summary, runErr = p.Run(cmd.Context(), target, date, sink)
	})

	notifier := ui.NewNotifier(cfg.Notifications.Enabled && cfg.Notifications.OnComplete)
	if runErr != nil {
		notifier.Send("Clip Fetcher", fmt.Sprintf("Fetch for %s failed.", account))
		os.Exit(1)
	}
	notifier.Send("Clip Fetcher", fmt.Sprintf("%s: %d clip(s) downloaded, %d failed.", account, summary.Downloaded, summary.Failed))
}
