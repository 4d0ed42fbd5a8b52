// Package browser defines the small driver surface the scraper needs from a
// real browser, plus the headless Chrome implementation backing it. Callers
// hold the interfaces so tests can substitute a scripted driver without a
// Chrome binary on the machine.
package browser

import (
	"context"
	"time"
)

// Driver is one live browser session. A fresh driver is launched per scrape
// and closed when the scrape ends, whatever the outcome.
type Driver interface {
	// Navigate loads the given URL, waiting up to timeout for the page load
	// to settle. A timeout of zero or less means no deadline. Deadline hits
	// surface as context.DeadlineExceeded in the error chain.
	Navigate(url string, timeout time.Duration) error

	// WaitVisible blocks until at least one element matching the CSS
	// selector is visible, or the timeout passes.
	WaitVisible(selector string, timeout time.Duration) error

	// HTML returns the full current markup of the page as-is, without
	// waiting for anything further to render.
	HTML() (string, error)

	// Close shuts the session and its browser process down.
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Driver, error)
}
