package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clipfetch/pkg/browser"
	"clipfetch/pkg/config"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/status"
	"clipfetch/pkg/twitchtracker"
)

// Scraper loads a clips page in a headless browser session and extracts the
// clip URLs from its rendered markup. Each Scrape call gets a fresh session.
type Scraper struct {
	launcher browser.Launcher
	cfg      *config.ScrapeConfig
	logger   logger.Logger
}

// New creates a Scraper backed by the given browser launcher
func New(launcher browser.Launcher, cfg *config.ScrapeConfig, log logger.Logger) *Scraper {
	return &Scraper{
		launcher: launcher,
		cfg:      cfg,
		logger:   log,
	}
}

// Scrape navigates to pageURL, waits for clip elements to render and
// returns the clip URLs found in the page, in document order without
// duplicates. An empty result with a nil error means the page rendered but
// held no clips; an error means no markup could be retrieved at all.
func (s *Scraper) Scrape(ctx context.Context, pageURL string, sink status.Sink) ([]string, error) {
	status.Info(sink, "Initializing browser...")
	s.logger.WithField("url", pageURL).Debug("Launching browser session")

	drv, err := s.launcher.Launch(ctx)
	if err != nil {
		for _, hint := range launchHints(err) {
			status.Error(sink, hint)
		}
		s.logger.WithError(err).Error("Browser launch failed")
		return nil, errs.NewScrapeFailed("browser launch failed", err)
	}
	defer func() {
		status.Info(sink, "Closing browser...")
		if cerr := drv.Close(); cerr != nil {
			s.logger.WithError(cerr).Warn("Browser close failed")
			status.Warning(sink, fmt.Sprintf("Error closing browser: %v", cerr))
		}
	}()

	status.Info(sink, fmt.Sprintf("Navigating to %s...", pageURL))
	if err := drv.Navigate(pageURL, s.cfg.PageLoadTimeout.Duration()); err != nil {
		msg := fmt.Sprintf("Navigation failed: %v", err)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			msg = fmt.Sprintf("Page load timed out after %s. The site might be down or slow.", s.cfg.PageLoadTimeout)
		case strings.Contains(err.Error(), "ERR_NAME_NOT_RESOLVED"):
			msg = "Navigation failed. Check your internet connection or the URL."
		}
		status.Error(sink, msg)
		s.logger.WithError(err).WithField("url", pageURL).Error("Navigation failed")
		return nil, errs.NewScrapeFailed(msg, err)
	}

	status.Info(sink, "Waiting for clip elements to load...")
	if err := drv.WaitVisible(twitchtracker.MarkerSelector, s.cfg.ElementWaitTimeout.Duration()); err != nil {
		// The marker never appearing may just mean the day has no clips,
		// so read whatever markup did load instead of failing.
		s.logger.WithError(err).Debug("Clip marker wait elapsed")
		status.Warning(sink, "Timed out waiting for clip elements, proceeding with page markup")
	}

	markup, err := drv.HTML()
	if err != nil {
		status.Error(sink, fmt.Sprintf("Failed to read page markup: %v", err))
		s.logger.WithError(err).Error("Page markup read failed")
		return nil, errs.NewScrapeFailed("reading page markup failed", err)
	}

	status.Info(sink, "Parsing markup for clips...")
	urls := twitchtracker.ExtractClipURLs(markup)

	if len(urls) == 0 {
		status.Warning(sink, "No clip URLs found on the page")
	}

	switch twitchtracker.DetectPageSignal(markup) {
	case twitchtracker.SignalChannelNotFound:
		status.Error(sink, "TwitchTracker error: channel not found")
	case twitchtracker.SignalNoClipsForPeriod:
		status.Info(sink, "TwitchTracker reports no clips for the requested date")
	}

	s.logger.InfoWithFields("Scrape finished", map[string]interface{}{
		"url":   pageURL,
		"clips": len(urls),
	})

	return urls, nil
}

// launchHints turns a browser startup failure into the status messages shown
// to the user, with an extra hint for the common causes.
func launchHints(err error) []string {
	hints := []string{fmt.Sprintf("Error initializing browser: %v", err)}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "executable file not found"),
		strings.Contains(errStr, "cannot find"),
		strings.Contains(errStr, "no such file"):
		hints = append(hints, "Chrome executable not found. Install Google Chrome or set scrape.chrome_path.")
	case strings.Contains(errStr, "permission denied"):
		hints = append(hints, "Permission error starting the browser. Check the binary's file permissions.")
	}

	return hints
}
