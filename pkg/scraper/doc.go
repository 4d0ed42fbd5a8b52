// Package scraper retrieves clip URLs from a TwitchTracker clips page.
//
// The Scraper drives a headless browser session through the small
// browser.Driver surface: navigate to the page, wait briefly for clip
// elements to render, read the full markup, then hand it to the
// twitchtracker extractor. The browser session is always closed before
// Scrape returns, whichever exit path was taken.
//
// Failure and emptiness are distinct outcomes. An error return means no
// markup was retrieved (browser launch, navigation or markup read failed);
// an empty URL list with a nil error means the page rendered without clips,
// which is a valid terminal state for a quiet day.
//
// Every step reports through a status.Sink so callers can surface progress
// to a human while the scrape runs.
package scraper
