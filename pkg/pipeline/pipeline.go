package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"clipfetch/pkg/accounts"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/status"
	"clipfetch/pkg/storage"
	"clipfetch/pkg/twitchtracker"
	"clipfetch/pkg/ytdlp"
)

// Pipeline drives one account's clips from page to disk: build the page
// URL, scrape it, record the account in history, then download each clip
// sequentially. All user-facing progress goes through the status.Sink
// handed to Run; the return values carry the machine-readable outcome.
type Pipeline struct {
	scraper    PageScraper
	downloader ClipDownloader
	checkTool  DependencyChecker
	history    HistoryStore
	layout     *storage.Layout
	tool       string
	logger     logger.Logger
}

// Options collects the pipeline's collaborators. Scraper and Downloader
// are required; the rest fall back to working defaults.
type Options struct {
	Scraper    PageScraper
	Downloader ClipDownloader
	CheckTool  DependencyChecker
	History    HistoryStore
	Layout     *storage.Layout
	Tool       string
	Logger     logger.Logger
}

// New creates a Pipeline from opts
func New(opts Options) *Pipeline {
	if opts.CheckTool == nil {
		opts.CheckTool = ytdlp.CheckAvailable
	}
	if opts.History == nil {
		opts.History = NopHistory{}
	}
	if opts.Layout == nil {
		opts.Layout = storage.NewLayout("./clips", true)
	}
	if opts.Tool == "" {
		opts.Tool = "yt-dlp"
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	return &Pipeline{
		scraper:    opts.Scraper,
		downloader: opts.Downloader,
		checkTool:  opts.CheckTool,
		history:    opts.History,
		layout:     opts.Layout,
		tool:       opts.Tool,
		logger:     opts.Logger,
	}
}

// Summary is the outcome of one account's run. Downloaded plus Failed
// always equals Requested; an early abort shrinks Requested to the clips
// whose downloads actually ran to a counted outcome.
type Summary struct {
	RunID        string
	Account      string
	Date         string
	Requested    int
	Downloaded   int
	Failed       int
	LimitApplied bool
}

// Run fetches and downloads one account's clips for date (YYYYMMDD).
// The returned Summary is valid even when err is non-nil; err carries
// the reason the run could not finish normally.
func (p *Pipeline) Run(ctx context.Context, target accounts.Target, date string, sink status.Sink) (Summary, error) {
	runID := uuid.New().String()
	summary := Summary{RunID: runID, Account: target.Name, Date: date}
	log := p.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"account": target.Name,
		"date":    date,
	})

	status.Info(sink, fmt.Sprintf("Starting process for '%s' on %s...", target.Name, date))
	log.Info("Run started")

	status.Info(sink, fmt.Sprintf("Checking for %s...", p.tool))
	if !p.checkTool(p.tool) {
		status.Error(sink, fmt.Sprintf("Error: %q command not found. Install it and ensure it is on your PATH.", p.tool))
		status.Info(sink, "Process aborted: Missing dependency.")
		log.Error("Download tool missing")
		return summary, errs.NewDependencyMissing(p.tool)
	}
	status.Success(sink, fmt.Sprintf("%s found.", p.tool))

	return p.runAccount(ctx, log, summary, target, date, sink)
}

// runAccount performs everything after the dependency check, so batch
// runs can verify the tool once and reuse the rest per account.
func (p *Pipeline) runAccount(ctx context.Context, log logger.Logger, summary Summary, target accounts.Target, date string, sink status.Sink) (Summary, error) {
	pageURL, err := twitchtracker.BuildClipsURL(target.Name, date)
	if err != nil {
		status.Error(sink, fmt.Sprintf("Invalid request: %v", err))
		status.Info(sink, "Process aborted.")
		log.WithError(err).Error("URL construction failed")
		return summary, err
	}
	status.Info(sink, fmt.Sprintf("Constructed URL: %s", pageURL))

	urls, err := p.scraper.Scrape(ctx, pageURL, sink)
	if err != nil {
		status.Error(sink, "Failed to retrieve clip URLs (check messages above for browser/network errors).")
		status.Info(sink, "Process aborted.")
		log.WithError(err).Error("Scrape failed")
		return summary, err
	}

	// The page answered for this account, so it goes into history even
	// when the day produced nothing.
	if herr := p.history.Record(target.Name); herr != nil {
		status.Warning(sink, fmt.Sprintf("Could not save '%s' to history: %v", target.Name, herr))
		log.WithError(herr).Warn("History write failed")
	}

	if len(urls) == 0 {
		status.Info(sink, "Process finished: No clips found to download.")
		log.Info("No clips found")
		return summary, nil
	}
	status.Info(sink, fmt.Sprintf("Found %d unique clip URLs.", len(urls)))

	toDownload := urls
	if target.MaxDownloads > 0 && len(urls) > target.MaxDownloads {
		toDownload = urls[:target.MaxDownloads]
		summary.LimitApplied = true
		status.Warning(sink, fmt.Sprintf("Applying download limit: Preparing to download %d of %d clips.", target.MaxDownloads, len(urls)))
	}
	summary.Requested = len(toDownload)

	destDir, err := p.layout.EnsureClipDir(target.Name, date)
	if err != nil {
		status.Error(sink, fmt.Sprintf("Output directory error: %v", err))
		status.Info(sink, "Process aborted: Output directory issue.")
		log.WithError(err).Error("Output directory creation failed")
		summary.Requested = 0
		return summary, err
	}
	status.Info(sink, fmt.Sprintf("Using output directory: %s", destDir))

	status.Info(sink, fmt.Sprintf("Starting download of %d clip(s)...", len(toDownload)))
	var fatal error
	for i, clipURL := range toDownload {
		status.Info(sink, fmt.Sprintf("--- Downloading clip %d of %d ---", i+1, len(toDownload)))
		err := p.downloader.Download(ctx, clipURL, destDir, sink)
		if err == nil {
			summary.Downloaded++
			continue
		}
		if errs.IsFatal(err) {
			// The tool vanished mid-run. The environment is broken,
			// not this clip, so stop instead of burning the rest.
			fatal = err
			log.WithError(err).Error("Download tool lost mid-run")
			break
		}
		summary.Failed++
		log.WithError(err).WithField("clip", clipURL).Error("Clip download failed")
	}
	if fatal != nil {
		summary.Requested = summary.Downloaded + summary.Failed
		status.Error(sink, fmt.Sprintf("Aborting remaining downloads: %v", fatal))
	}

	p.summarize(summary, target.MaxDownloads, sink)
	log.InfoWithFields("Run finished", map[string]interface{}{
		"requested":  summary.Requested,
		"downloaded": summary.Downloaded,
		"failed":     summary.Failed,
	})

	return summary, fatal
}

// summarize emits the terminal events for a run that reached the
// download stage.
func (p *Pipeline) summarize(summary Summary, limit int, sink status.Sink) {
	status.Info(sink, "--- Download Process Complete ---")
	if summary.LimitApplied {
		status.Success(sink, fmt.Sprintf("Successfully downloaded: %d clip(s) (Limit of %d reached).", summary.Downloaded, limit))
	} else {
		status.Success(sink, fmt.Sprintf("Successfully downloaded: %d clip(s).", summary.Downloaded))
	}
	if summary.Failed > 0 {
		status.Warning(sink, fmt.Sprintf("Failed to download: %d clip(s). Check logs above for details.", summary.Failed))
	}
	status.Info(sink, "Process finished.")
}
