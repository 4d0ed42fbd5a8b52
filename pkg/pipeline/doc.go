// Package pipeline orchestrates clip discovery and download for one or
// many accounts.
//
// A Run is strictly sequential: verify the download tool, build the
// TwitchTracker clips URL, scrape it, record the account in history,
// then download each clip one at a time. Every stage reports through a
// status.Sink so front ends can render progress without knowing the
// stages; the returned Summary carries the counts callers act on.
//
// Failure handling splits two ways. A failed clip is counted and the
// loop continues; a missing download tool is an environment problem
// and stops the run (and, in RunBatch, the whole batch). A scrape
// failure inside a batch only skips that account.
//
// Collaborators arrive through small consumer-side interfaces
// (PageScraper, ClipDownloader, HistoryStore), so tests substitute
// fakes and the cmd layer wires the real scraper and ytdlp downloader.
package pipeline
