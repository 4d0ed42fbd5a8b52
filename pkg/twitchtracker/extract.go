package twitchtracker

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// clipIDPattern pulls the clip id out of a lightbox attribute value. The
// parameter must start the value or follow a query separator, and the id
// ends at the next separator, so the same clip embedded with different
// parameters yields the same id.
var clipIDPattern = regexp.MustCompile(`(?:^|[?&])clip=([^&"']+)`)

// PageSignal is a site-specific condition detected in page markup
type PageSignal int

const (
	SignalNone PageSignal = iota
	SignalChannelNotFound
	SignalNoClipsForPeriod
)

const (
	channelNotFoundText  = "Channel not found"
	noClipsForPeriodText = "No clips found for specified period"
)

// ExtractClipURLs parses clips page markup and returns the clip URLs in
// document order, deduplicated by first occurrence. It is a pure function
// of the markup; no matches yield an empty slice.
func ExtractClipURLs(markup string) []string {
	urls := []string{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return urls
	}

	seen := make(map[string]struct{})
	doc.Find(ClipSelector).Each(func(_ int, sel *goquery.Selection) {
		attr, ok := sel.Attr(ClipAttribute)
		if !ok {
			return
		}

		m := clipIDPattern.FindStringSubmatch(attr)
		if m == nil {
			return
		}

		id := m[1]
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		urls = append(urls, ClipServiceURL+id)
	})

	return urls
}

// DetectPageSignal scans markup for known negative page states
func DetectPageSignal(markup string) PageSignal {
	if strings.Contains(markup, channelNotFoundText) {
		return SignalChannelNotFound
	}
	if strings.Contains(markup, noClipsForPeriodText) {
		return SignalNoClipsForPeriod
	}
	return SignalNone
}
