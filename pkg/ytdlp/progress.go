package ytdlp

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// progressState throttles progress reporting for one download invocation.
// The zero-ish sentinel values mirror what callers see: -1 means nothing
// reported yet, -2 means the raw-line fallback was used.
type progressState struct {
	lastPercent float64
}

func newProgressState() *progressState {
	return &progressState{lastPercent: -1}
}

// Update inspects one stdout line. When the line is a progress line whose
// percentage moved at least a whole point since the last report (or is the
// first report), it returns the status message to emit. A progress line
// whose percentage cannot be parsed is surfaced raw at most once so the
// user still sees movement.
func (p *progressState) Update(line string) (string, bool) {
	if !isProgressLine(line) {
		return "", false
	}

	percent, err := parsePercent(line)
	if err != nil {
		if p.lastPercent == -1 {
			p.lastPercent = -2
			return "Progress: " + line, true
		}
		return "", false
	}

	if p.lastPercent == -1 || math.Abs(percent-p.lastPercent) >= 1.0 {
		p.lastPercent = percent
		return "Progress: " + line, true
	}
	return "", false
}

// isProgressLine reports whether a stdout line looks like the tool's
// progress bar: a percentage alongside an ETA, speed or elapsed marker.
func isProgressLine(line string) bool {
	if !strings.Contains(line, "%") {
		return false
	}
	return strings.Contains(line, "ETA") ||
		strings.Contains(line, "speed") ||
		strings.Contains(line, "elapsed")
}

// parsePercent reads the percentage from a progress line: the last
// whitespace-separated token before the first percent sign.
func parsePercent(line string) (float64, error) {
	head := line[:strings.Index(line, "%")]
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(fields[len(fields)-1], 64)
}

// scanProgressLines splits on carriage returns as well as newlines, since
// the tool redraws its progress bar with bare \r when it believes it is
// attached to a terminal.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
