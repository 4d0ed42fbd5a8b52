package twitchtracker

import (
	"fmt"
	"time"

	errs "clipfetch/pkg/errors"
)

const (
	// BaseURL is the base URL for TwitchTracker
	BaseURL = "https://twitchtracker.com"

	// ClipServiceURL is the base URL clips resolve against
	ClipServiceURL = "https://clips.twitch.tv/"

	// ClipSelector matches the clip thumbnail elements on a clips page
	ClipSelector = "div.clip-tp"

	// ClipAttribute is the element attribute embedding the clip link
	ClipAttribute = "data-litebox"

	// MarkerSelector is what a scraper waits on before reading markup,
	// a clip element that actually carries the lightbox attribute
	MarkerSelector = ClipSelector + "[" + ClipAttribute + "]"

	// DateLayout is the wire format for the date fragment (YYYYMMDD)
	DateLayout = "20060102"

	// MaxAccountLength is the longest account name the site accepts
	MaxAccountLength = 25
)

// BuildClipsURL constructs the clips page URL for an account on a single
// day: <base>/<account>/clips#<date>-<date>. The date must already be in
// YYYYMMDD form.
func BuildClipsURL(account, date string) (string, error) {
	if account == "" {
		return "", errs.NewInvalidInput("account name is empty")
	}
	if !IsValidAccount(account) {
		return "", errs.NewInvalidInput(fmt.Sprintf("account name %q contains invalid characters", account))
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", errs.NewInvalidInput(fmt.Sprintf("date %q is not in YYYYMMDD form", date))
	}

	return fmt.Sprintf("%s/%s/clips#%s-%s", BaseURL, account, date, date), nil
}

// DateForOffset returns the date daysAgo days before today, formatted for
// BuildClipsURL. Offset 0 is today, 1 is yesterday.
func DateForOffset(daysAgo int) string {
	return time.Now().AddDate(0, 0, -daysAgo).Format(DateLayout)
}

// IsValidAccount checks whether an account name can appear in a page URL.
// Twitch account names use letters, digits and underscores only.
func IsValidAccount(account string) bool {
	if account == "" || len(account) > MaxAccountLength {
		return false
	}

	for _, char := range account {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeAccount strips decoration users paste in with account names
func SanitizeAccount(account string) string {
	if account == "" {
		return ""
	}

	if account[0] == '@' {
		account = account[1:]
	}

	for len(account) > 0 && (account[len(account)-1] == '/' || account[len(account)-1] == ' ') {
		account = account[:len(account)-1]
	}
	for len(account) > 0 && account[0] == ' ' {
		account = account[1:]
	}

	return account
}
