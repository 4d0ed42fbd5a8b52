// Package history keeps a small most-recent-first list of the accounts
// that were queried successfully, so front-ends can offer them back to the
// user. The pipeline records an account once per successful scrape; a
// failed scrape never reaches the history.
//
// The list lives in a JSON file in the per-OS data directory, written
// atomically. Corruption or a missing file just starts the history empty.
// History persistence failures are meant to be surfaced as warnings, never
// as run failures.
package history
