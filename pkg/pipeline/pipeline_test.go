package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipfetch/pkg/accounts"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/status"
	"clipfetch/pkg/storage"
)

type fakeScraper struct {
	fn    func(pageURL string) ([]string, error)
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, pageURL string, _ status.Sink) ([]string, error) {
	f.calls = append(f.calls, pageURL)
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(pageURL)
}

type fakeDownloader struct {
	fn    func(clipURL string) error
	calls []string
	dirs  []string
}

func (f *fakeDownloader) Download(_ context.Context, clipURL, destDir string, _ status.Sink) error {
	f.calls = append(f.calls, clipURL)
	f.dirs = append(f.dirs, destDir)
	if f.fn == nil {
		return nil
	}
	return f.fn(clipURL)
}

type fakeHistory struct {
	recorded []string
	err      error
}

func (f *fakeHistory) Record(name string) error {
	f.recorded = append(f.recorded, name)
	return f.err
}

func clipURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://clips.twitch.tv/Clip%02d", i+1)
	}
	return urls
}

func newTestPipeline(t *testing.T, scraper PageScraper, downloader ClipDownloader, history HistoryStore, toolOK bool) *Pipeline {
	t.Helper()
	return New(Options{
		Scraper:    scraper,
		Downloader: downloader,
		CheckTool:  func(string) bool { return toolOK },
		History:    history,
		Layout:     storage.NewLayout(t.TempDir(), true),
		Tool:       "yt-dlp",
		Logger:     logger.NewTestLogger(),
	})
}

func TestRunDownloadsAllClips(t *testing.T) {
	urls := clipURLs(3)
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return urls, nil }}
	downloader := &fakeDownloader{}
	history := &fakeHistory{}

	base := t.TempDir()
	p := New(Options{
		Scraper:    scraper,
		Downloader: downloader,
		CheckTool:  func(string) bool { return true },
		History:    history,
		Layout:     storage.NewLayout(base, true),
		Tool:       "yt-dlp",
		Logger:     logger.NewTestLogger(),
	})

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)
	require.NoError(t, err)

	assert.Equal(t, "streamer", summary.Account)
	assert.Equal(t, "20240105", summary.Date)
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 3, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.LimitApplied)

	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err, "run IDs should be UUIDs")

	assert.Equal(t, urls, downloader.calls)
	for _, dir := range downloader.dirs {
		assert.Equal(t, filepath.Join(base, "streamer", "20240105"), dir)
	}
	assert.Equal(t, []string{"streamer"}, history.recorded)

	require.Len(t, scraper.calls, 1)
	assert.Equal(t, "https://twitchtracker.com/streamer/clips#20240105-20240105", scraper.calls[0])

	assert.True(t, rec.Has(status.SeverityInfo, "--- Downloading clip 1 of 3 ---"))
	assert.True(t, rec.Has(status.SeverityInfo, "--- Downloading clip 3 of 3 ---"))
	assert.True(t, rec.Has(status.SeveritySuccess, "Successfully downloaded: 3 clip(s)."))

	messages := rec.Messages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "Process finished.", messages[len(messages)-1])
}

func TestRunAppliesDownloadLimit(t *testing.T) {
	urls := clipURLs(12)
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return urls, nil }}
	downloader := &fakeDownloader{}
	p := newTestPipeline(t, scraper, downloader, &fakeHistory{}, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer", MaxDownloads: 5}, "20240105", rec)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Requested)
	assert.Equal(t, 5, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.LimitApplied)
	assert.Equal(t, urls[:5], downloader.calls, "only the first clips up to the limit should be attempted")

	assert.True(t, rec.Has(status.SeverityWarning, "Applying download limit: Preparing to download 5 of 12 clips."))
	assert.True(t, rec.Has(status.SeveritySuccess, "(Limit of 5 reached)"))
}

func TestRunLimitZeroMeansEverything(t *testing.T) {
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return clipURLs(4), nil }}
	downloader := &fakeDownloader{}
	p := newTestPipeline(t, scraper, downloader, &fakeHistory{}, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Downloaded)
	assert.False(t, summary.LimitApplied)
	assert.False(t, rec.Has(status.SeverityWarning, "Applying download limit"))
}

func TestRunDependencyMissingAbortsBeforeScraping(t *testing.T) {
	scraper := &fakeScraper{}
	downloader := &fakeDownloader{}
	history := &fakeHistory{}
	p := newTestPipeline(t, scraper, downloader, history, false)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.Error(t, err)
	assert.Equal(t, errs.CategoryDependencyMissing, errs.CategoryOf(err))
	assert.True(t, errs.IsFatal(err))

	assert.Empty(t, scraper.calls, "a missing tool should stop the run before any scraping")
	assert.Empty(t, downloader.calls)
	assert.Empty(t, history.recorded)
	assert.Equal(t, 0, summary.Requested)

	assert.Equal(t, 1, rec.Count(status.SeverityError, ""), "exactly one error event")
	messages := rec.Messages()
	assert.Equal(t, "Process aborted: Missing dependency.", messages[len(messages)-1])
}

func TestRunScrapeFailureRecordsNoHistory(t *testing.T) {
	scraper := &fakeScraper{fn: func(string) ([]string, error) {
		return nil, errs.NewScrapeFailed("browser launch failed", nil)
	}}
	downloader := &fakeDownloader{}
	history := &fakeHistory{}
	p := newTestPipeline(t, scraper, downloader, history, true)

	rec := status.NewRecorder()
	_, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.Error(t, err)
	assert.Equal(t, errs.CategoryScrapeFailed, errs.CategoryOf(err))
	assert.Empty(t, history.recorded, "a failed scrape must not touch history")
	assert.Empty(t, downloader.calls)

	assert.True(t, rec.Has(status.SeverityError, "Failed to retrieve clip URLs"))
	assert.True(t, rec.Has(status.SeverityInfo, "Process aborted."))
}

func TestRunZeroClipsIsSuccess(t *testing.T) {
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return []string{}, nil }}
	downloader := &fakeDownloader{}
	history := &fakeHistory{}
	p := newTestPipeline(t, scraper, downloader, history, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Requested)
	assert.Equal(t, 0, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, downloader.calls)
	assert.Equal(t, []string{"streamer"}, history.recorded, "an answered page goes into history even with zero clips")
	assert.True(t, rec.Has(status.SeverityInfo, "Process finished: No clips found to download."))
}

func TestRunHistoryFailureIsNotFatal(t *testing.T) {
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return clipURLs(1), nil }}
	downloader := &fakeDownloader{}
	history := &fakeHistory{err: fmt.Errorf("disk full")}
	p := newTestPipeline(t, scraper, downloader, history, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Downloaded)
	assert.True(t, rec.Has(status.SeverityWarning, "Could not save 'streamer' to history"))
}

func TestRunCountsFailedClips(t *testing.T) {
	urls := clipURLs(3)
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return urls, nil }}
	downloader := &fakeDownloader{fn: func(clipURL string) error {
		if clipURL == urls[1] {
			return errs.NewDownloadFailed(errs.ReasonUnavailable, "download of Clip02 failed", nil)
		}
		return nil
	}}
	p := newTestPipeline(t, scraper, downloader, &fakeHistory{}, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.NoError(t, err, "per-clip failures are counted, not returned")
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.Requested, summary.Downloaded+summary.Failed)

	assert.True(t, rec.Has(status.SeverityWarning, "Failed to download: 1 clip(s)."))
	assert.True(t, rec.Has(status.SeveritySuccess, "Successfully downloaded: 2 clip(s)."))
}

func TestRunToolVanishingMidRunAborts(t *testing.T) {
	urls := clipURLs(3)
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return urls, nil }}
	downloader := &fakeDownloader{fn: func(clipURL string) error {
		if clipURL == urls[1] {
			return errs.NewToolMissing("yt-dlp", nil)
		}
		return nil
	}}
	p := newTestPipeline(t, scraper, downloader, &fakeHistory{}, true)

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.Error(t, err)
	assert.True(t, errs.IsFatal(err))
	assert.Len(t, downloader.calls, 2, "the loop stops at the fatal clip")
	assert.Equal(t, 1, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed, "the aborting clip is an environment problem, not a failed clip")
	assert.Equal(t, summary.Downloaded+summary.Failed, summary.Requested)

	assert.True(t, rec.Has(status.SeverityInfo, "--- Download Process Complete ---"), "terminal events still go out on abort")
	messages := rec.Messages()
	assert.Equal(t, "Process finished.", messages[len(messages)-1])
}

func TestRunRejectsMalformedDate(t *testing.T) {
	scraper := &fakeScraper{}
	p := newTestPipeline(t, scraper, &fakeDownloader{}, &fakeHistory{}, true)

	rec := status.NewRecorder()
	_, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "2024-01-05", rec)

	require.Error(t, err)
	assert.Equal(t, errs.CategoryInvalidInput, errs.CategoryOf(err))
	assert.Empty(t, scraper.calls)
	assert.True(t, rec.Has(status.SeverityError, "Invalid request"))
}

func TestRunOutputDirectoryFailureAborts(t *testing.T) {
	scraper := &fakeScraper{fn: func(string) ([]string, error) { return clipURLs(2), nil }}
	downloader := &fakeDownloader{}

	// A regular file where the output tree should go makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "base")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	p := New(Options{
		Scraper:    scraper,
		Downloader: downloader,
		CheckTool:  func(string) bool { return true },
		History:    &fakeHistory{},
		Layout:     storage.NewLayout(blocker, true),
		Tool:       "yt-dlp",
		Logger:     logger.NewTestLogger(),
	})

	rec := status.NewRecorder()
	summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer"}, "20240105", rec)

	require.Error(t, err)
	assert.Empty(t, downloader.calls)
	assert.Equal(t, 0, summary.Requested)
	assert.True(t, rec.Has(status.SeverityInfo, "Process aborted: Output directory issue."))
}

func TestRunSummaryInvariant(t *testing.T) {
	cases := []struct {
		name     string
		found    int
		limit    int
		failEach int // every n-th clip fails, 0 for none
	}{
		{name: "all succeed", found: 4},
		{name: "all fail", found: 3, failEach: 1},
		{name: "every second fails", found: 6, failEach: 2},
		{name: "limited with failures", found: 10, limit: 4, failEach: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			urls := clipURLs(tc.found)
			scraper := &fakeScraper{fn: func(string) ([]string, error) { return urls, nil }}
			attempt := 0
			downloader := &fakeDownloader{fn: func(string) error {
				attempt++
				if tc.failEach > 0 && attempt%tc.failEach == 0 {
					return errs.NewDownloadFailed(errs.ReasonUnclassified, "download failed", nil)
				}
				return nil
			}}
			p := newTestPipeline(t, scraper, downloader, &fakeHistory{}, true)

			summary, err := p.Run(context.Background(), accounts.Target{Name: "streamer", MaxDownloads: tc.limit}, "20240105", status.Discard)
			require.NoError(t, err)

			want := tc.found
			if tc.limit > 0 && tc.limit < tc.found {
				want = tc.limit
			}
			assert.Equal(t, want, summary.Requested)
			assert.Equal(t, summary.Requested, summary.Downloaded+summary.Failed)
		})
	}
}
