// Package twitchtracker holds the site-specific knowledge for clip
// discovery: how a channel's clips page URL is shaped, how clip ids are
// embedded in the page markup, and which page texts signal a dead end.
//
// Everything here is pure; fetching the page is the scraper's job.
//
// Example usage:
//
//	pageURL, err := twitchtracker.BuildClipsURL("somechannel", "20260821")
//	if err != nil {
//	    // account or date cannot form a valid request
//	}
//
//	urls := twitchtracker.ExtractClipURLs(markup)
//	if twitchtracker.DetectPageSignal(markup) == twitchtracker.SignalChannelNotFound {
//	    // the account does not exist on the site
//	}
package twitchtracker
