package ytdlp

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progressLine(percent float64) string {
	return fmt.Sprintf("[download] %5.1f%% of 10.00MiB at 1.20MiB/s ETA 00:42", percent)
}

func TestIsProgressLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"percent with ETA", "[download]  12.5% of 10MiB at 1MiB/s ETA 00:10", true},
		{"percent with speed", "frame=100 50.0% speed=2.1x", true},
		{"percent with elapsed", "50.0% done, elapsed 00:12", true},
		{"percent without marker", "downloaded 50% of file", false},
		{"marker without percent", "[download] Destination: clip.mp4 ETA unknown", false},
		{"plain line", "[download] Destination: clip.mp4", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isProgressLine(tt.line))
		})
	}
}

func TestParsePercent(t *testing.T) {
	got, err := parsePercent("[download]  42.5% of ~8MiB at 2MiB/s ETA 00:03")
	require.NoError(t, err)
	assert.InDelta(t, 42.5, got, 0.001)

	got, err = parsePercent("100% ETA 00:00")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 0.001)

	_, err = parsePercent("[download] ???% at some speed ETA 00:09")
	assert.Error(t, err)
}

func TestProgressThrottling(t *testing.T) {
	state := newProgressState()

	var emitted []float64
	for _, p := range []float64{0.0, 0.4, 0.9, 1.0, 1.8, 2.5, 2.9, 50.0, 50.5, 100.0} {
		if _, ok := state.Update(progressLine(p)); ok {
			emitted = append(emitted, p)
		}
	}

	// First report always, then only moves of a whole point or more.
	assert.Equal(t, []float64{0.0, 1.0, 2.5, 50.0, 100.0}, emitted)
}

func TestProgressFallbackEmittedOnce(t *testing.T) {
	state := newProgressState()

	msg, ok := state.Update("[download] ???% at some speed ETA 00:09")
	require.True(t, ok, "first unparseable progress line is surfaced raw")
	assert.Contains(t, msg, "???%")

	_, ok = state.Update("[download] ???% at some speed ETA 00:08")
	assert.False(t, ok, "fallback is used at most once")

	// A later parseable line resumes normal reporting.
	_, ok = state.Update(progressLine(10.0))
	assert.True(t, ok)
}

func TestProgressStateIsPerInvocation(t *testing.T) {
	first := newProgressState()
	_, ok := first.Update(progressLine(50.0))
	require.True(t, ok)

	// A fresh state has no memory of the previous download.
	second := newProgressState()
	_, ok = second.Update(progressLine(50.2))
	assert.True(t, ok, "first report of a new invocation always emits")
}

func TestNonProgressLinesIgnored(t *testing.T) {
	state := newProgressState()

	_, ok := state.Update("[download] Destination: somechannel_title_Abc123.mp4")
	assert.False(t, ok)

	_, ok = state.Update("[Merger] Merging formats")
	assert.False(t, ok)

	_, ok = state.Update(progressLine(5.0))
	assert.True(t, ok, "ignored lines must not consume the first-report slot")
}

func TestScanProgressLinesSplitsOnCarriageReturn(t *testing.T) {
	input := "line one\rline two\r\nline three\nline four"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanProgressLines)

	var lines []string
	for scanner.Scan() {
		if tok := scanner.Text(); tok != "" {
			lines = append(lines, tok)
		}
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"line one", "line two", "line three", "line four"}, lines)
}
