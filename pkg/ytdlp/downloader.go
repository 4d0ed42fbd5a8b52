// Package ytdlp runs the external download tool as a streaming subprocess,
// surfacing its progress output as status events and classifying its
// failures from captured stderr.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipfetch/pkg/config"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/status"
)

// outputTemplate names downloaded files by uploader, title and clip id so
// files from different clips never collide.
const outputTemplate = "%(uploader)s_%(title)s_%(id)s.%(ext)s"

// Downloader invokes the configured download tool once per clip URL.
type Downloader struct {
	cfg    *config.DownloadConfig
	logger logger.Logger
}

// New creates a Downloader using the given tool configuration
func New(cfg *config.DownloadConfig, log logger.Logger) *Downloader {
	return &Downloader{
		cfg:    cfg,
		logger: log,
	}
}

// CheckAvailable reports whether the download tool resolves on PATH. It
// never executes the tool.
func CheckAvailable(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// ClipID extracts the clip identifier from a clip URL, for messages
func ClipID(clipURL string) string {
	id := clipURL
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.Index(id, "?"); i >= 0 {
		id = id[:i]
	}
	return id
}

func (d *Downloader) buildArgs(clipURL, destDir string) []string {
	args := make([]string, 0, 12)

	if d.cfg.SkipCertCheck {
		args = append(args, "--no-check-certificate")
	}
	args = append(args,
		"-o", filepath.Join(destDir, outputTemplate),
		"--socket-timeout", strconv.Itoa(int(d.cfg.SocketTimeout.Seconds())),
		"--retries", strconv.Itoa(d.cfg.Retries),
		"--format", d.cfg.Format,
	)
	if d.cfg.ForceIPv4 {
		args = append(args, "--force-ipv4")
	}
	args = append(args, "--no-playlist", clipURL)

	return args
}

// Download retrieves one clip into destDir. Stdout is streamed line by line
// for progress reporting while stderr is captured whole for failure
// classification after exit. A missing tool binary is returned as a fatal
// tool-missing error; every other failure is local to this clip.
func (d *Downloader) Download(ctx context.Context, clipURL, destDir string, sink status.Sink) error {
	clipID := ClipID(clipURL)
	args := d.buildArgs(clipURL, destDir)

	d.logger.DebugWithFields("Starting clip download", map[string]interface{}{
		"clip": clipID,
		"tool": d.cfg.Tool,
		"dest": destDir,
	})
	status.Info(sink, fmt.Sprintf("Downloading: %s", clipID))

	cmd := exec.CommandContext(ctx, d.cfg.Tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errs.NewDownloadFailed(errs.ReasonUnclassified, fmt.Sprintf("opening %s output pipe", d.cfg.Tool), err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			status.Error(sink, fmt.Sprintf("Error: %q command not found. Ensure the tool is installed and on your PATH.", d.cfg.Tool))
			d.logger.WithError(err).WithField("tool", d.cfg.Tool).Error("Download tool not found")
			return errs.NewToolMissing(d.cfg.Tool, err)
		}
		status.Error(sink, fmt.Sprintf("Failed to start %s: %v", d.cfg.Tool, err))
		return errs.NewDownloadFailed(errs.ReasonUnclassified, fmt.Sprintf("starting %s", d.cfg.Tool), err)
	}

	progress := newProgressState()
	scanner := bufio.NewScanner(stdout)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if msg, ok := progress.Update(line); ok {
			status.Info(sink, msg)
		}
	}
	if serr := scanner.Err(); serr != nil {
		d.logger.WithError(serr).WithField("clip", clipID).Debug("Output stream ended early")
	}

	if err := cmd.Wait(); err != nil {
		return d.classifyFailure(ctx, clipID, stderr.String(), err, sink)
	}

	status.Success(sink, fmt.Sprintf("Downloaded: %s", clipID))
	d.logger.InfoWithFields("Clip downloaded", map[string]interface{}{
		"clip": clipID,
	})
	return nil
}

func (d *Downloader) classifyFailure(ctx context.Context, clipID, stderrText string, waitErr error, sink status.Sink) error {
	reason, explain := classifyStderr(stderrText)
	if reason == errs.ReasonUnclassified && ctx.Err() != nil {
		reason, explain = errs.ReasonCancelled, "download cancelled"
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	msg := fmt.Sprintf("%s failed for %s (exit status %d)", d.cfg.Tool, clipID, exitCode)
	if explain != "" {
		msg += ": " + explain
	} else if tail := stderrTail(stderrText, 3); tail != "" {
		msg += ": " + tail
	}
	status.Error(sink, msg)

	d.logger.ErrorWithFields("Clip download failed", map[string]interface{}{
		"clip":      clipID,
		"exit_code": exitCode,
		"reason":    string(reason),
	})

	return errs.NewDownloadFailed(reason, fmt.Sprintf("download of %s failed", clipID), waitErr)
}

// classifyStderr maps known substrings of the tool's error output to a
// failure reason and a human-readable explanation.
func classifyStderr(stderr string) (errs.Reason, string) {
	switch {
	case strings.Contains(stderr, "Unable to download webpage"),
		strings.Contains(stderr, "HTTP Error 404"):
		return errs.ReasonUnavailable, "clip might be deleted, private, or unavailable"
	case strings.Contains(stderr, "Interrupted by user"):
		return errs.ReasonCancelled, "download cancelled by user action"
	case strings.Contains(stderr, "Socket timeout"):
		return errs.ReasonNetworkTimeout, "network connection timed out during download"
	case strings.Contains(stderr, "Video unavailable"):
		return errs.ReasonUnavailable, "source reported the video as unavailable"
	default:
		return errs.ReasonUnclassified, ""
	}
}

// stderrTail returns up to maxLines of the last non-empty stderr lines,
// keeping unclassified failure messages short enough to read.
func stderrTail(stderr string, maxLines int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < maxLines; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append([]string{line}, kept...)
	}
	return strings.Join(kept, " | ")
}
