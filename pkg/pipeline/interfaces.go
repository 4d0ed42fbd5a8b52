package pipeline

import (
	"context"

	"clipfetch/pkg/status"
)

// PageScraper retrieves the clip URLs present on a clips page. An empty
// result with a nil error means the page rendered without clips.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string, sink status.Sink) ([]string, error)
}

// ClipDownloader retrieves a single clip into destDir
type ClipDownloader interface {
	Download(ctx context.Context, clipURL, destDir string, sink status.Sink) error
}

// DependencyChecker reports whether the named download tool is reachable
type DependencyChecker func(tool string) bool

// HistoryStore remembers accounts whose pages were scraped successfully.
// Implementations own persistence and deduplication.
type HistoryStore interface {
	Record(name string) error
}

// NopHistory is a HistoryStore that remembers nothing
type NopHistory struct{}

func (NopHistory) Record(string) error { return nil }
