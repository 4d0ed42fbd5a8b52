package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"clipfetch/internal/worker"
	"clipfetch/pkg/browser"
	"clipfetch/pkg/config"
	"clipfetch/pkg/history"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/pipeline"
	"clipfetch/pkg/scraper"
	"clipfetch/pkg/status"
	"clipfetch/pkg/storage"
	"clipfetch/pkg/twitchtracker"
	"clipfetch/pkg/ui"
	"clipfetch/pkg/ytdlp"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipfetch",
	Short: "Download a day's Twitch clips for any channel",
	Long: `Clip Fetcher discovers the clips a Twitch channel produced on a given
day by scraping its TwitchTracker clips page with headless Chrome, then
downloads each clip sequentially with yt-dlp.

Fetch a single account with 'clipfetch fetch', or keep a saved account
list and pull them all in one go with 'clipfetch batch'. Every account
that answers is remembered in a history list for quick reuse.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch cmd.Name() {
		case "fetch", "batch":
			if !noColor {
				ui.PrintLogo()
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default searches .clipfetch.yaml and ~/.config/clipfetch/)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")

	// Version template
	rootCmd.SetVersionTemplate(`Clip Fetcher {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig assembles the effective configuration and initializes the
// global logger from it.
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if !notifications {
		flags["notifications"] = false
	}
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDate turns the --date/--yesterday flags into a YYYYMMDD date,
// defaulting to today.
func resolveDate(date string, yesterday bool) (string, error) {
	if date != "" && yesterday {
		return "", fmt.Errorf("--date and --yesterday are mutually exclusive")
	}
	if yesterday {
		return twitchtracker.DateForOffset(1), nil
	}
	if date == "" {
		return twitchtracker.DateForOffset(0), nil
	}
	if _, err := time.Parse(twitchtracker.DateLayout, date); err != nil {
		return "", fmt.Errorf("date %q is not in YYYYMMDD form", date)
	}
	return date, nil
}

// buildPipeline wires the real collaborators from the configuration.
// History trouble downgrades to a warning; a run without history is
// still a run.
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	log := logger.GetLogger()

	var hist pipeline.HistoryStore
	if store, err := history.NewStore(cfg.Stores.HistoryFile, cfg.Stores.HistoryLimit); err != nil {
		log.WithError(err).Warn("History unavailable for this run")
		hist = pipeline.NopHistory{}
	} else {
		hist = store
	}

	return pipeline.New(pipeline.Options{
		Scraper:    scraper.New(browser.NewChromeLauncher(cfg.Scrape.ChromePath), &cfg.Scrape, log),
		Downloader: ytdlp.New(&cfg.Download, log),
		History:    hist,
		Layout:     storage.NewLayout(cfg.Output.BaseDirectory, cfg.Output.AccountFolders),
		Tool:       cfg.Download.Tool,
		Logger:     log,
	})
}

// runWithStatus executes job on the background runner while the calling
// goroutine drains and renders the status stream. The render loop is
// what keeps Emit from blocking once the channel buffer fills.
func runWithStatus(name string, render *ui.Renderer, job func(status.Sink)) {
	sink := status.NewChannelSink(64)
	runner := worker.New(logger.GetLogger())
	if !runner.TryRun(name, func() {
		defer sink.Close()
		job(sink)
	}) {
		sink.Close()
	}

	for e := range sink.Events() {
		render.Render(e)
	}
	runner.Wait()
}
