package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipfetch/pkg/accounts"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
	"clipfetch/pkg/status"
)

// BatchSummary aggregates the outcome of a multi-account run. Totals
// include partial work from an account whose run was cut short.
type BatchSummary struct {
	BatchID           string
	Date              string
	Accounts          []Summary
	AccountsPlanned   int
	AccountsProcessed int
	TotalDownloaded   int
	TotalFailed       int
	Elapsed           time.Duration
	Aborted           bool
	AbortReason       string
}

// RunBatch processes each target in order for date (YYYYMMDD). The tool
// is verified once up front. A scrape failure skips that account and
// moves on; a vanished download tool aborts the whole batch. Terminal
// summary events are emitted no matter how the batch ended.
func (p *Pipeline) RunBatch(ctx context.Context, targets []accounts.Target, date string, sink status.Sink) (BatchSummary, error) {
	batch := BatchSummary{
		BatchID:         uuid.New().String(),
		Date:            date,
		AccountsPlanned: len(targets),
	}
	started := time.Now()
	log := p.logger.WithFields(map[string]interface{}{
		"batch_id": batch.BatchID,
		"date":     date,
		"accounts": len(targets),
	})

	status.Info(sink, fmt.Sprintf("--- Starting Download Process for %s ---", date))
	log.Info("Batch started")

	var fatal error

	status.Info(sink, fmt.Sprintf("Checking for %s...", p.tool))
	if !p.checkTool(p.tool) {
		status.Error(sink, fmt.Sprintf("Error: %q command not found. Install it and ensure it is on your PATH.", p.tool))
		batch.Aborted = true
		batch.AbortReason = fmt.Sprintf("%s is not installed", p.tool)
		fatal = errs.NewDependencyMissing(p.tool)
		log.Error("Download tool missing, nothing processed")
	} else {
		status.Success(sink, fmt.Sprintf("%s found.", p.tool))
		fatal = p.processTargets(ctx, log, &batch, targets, date, sink)
	}

	batch.Elapsed = time.Since(started)

	status.Info(sink, fmt.Sprintf("--- Download Process for %s Finished ---", date))
	status.Info(sink, fmt.Sprintf("Total clips downloaded across all accounts: %d", batch.TotalDownloaded))
	if batch.TotalFailed > 0 {
		status.Warning(sink, fmt.Sprintf("Total clips failed across all accounts: %d", batch.TotalFailed))
	}
	status.Info(sink, fmt.Sprintf("Total time: %.2f seconds", batch.Elapsed.Seconds()))
	log.InfoWithFields("Batch finished", map[string]interface{}{
		"processed":  batch.AccountsProcessed,
		"downloaded": batch.TotalDownloaded,
		"failed":     batch.TotalFailed,
		"aborted":    batch.Aborted,
	})

	return batch, fatal
}

func (p *Pipeline) processTargets(ctx context.Context, log logger.Logger, batch *BatchSummary, targets []accounts.Target, date string, sink status.Sink) error {
	for _, target := range targets {
		name := strings.TrimSpace(target.Name)
		if name == "" {
			log.Warn("Skipping entry with missing account name")
			continue
		}
		target.Name = name

		status.Info(sink, fmt.Sprintf("Processing account: %s for date %s...", name, date))
		summary := Summary{RunID: uuid.New().String(), Account: name, Date: date}
		summary, err := p.runAccount(ctx, log.WithField("account", name), summary, target, date, sink)

		batch.Accounts = append(batch.Accounts, summary)
		batch.AccountsProcessed++
		batch.TotalDownloaded += summary.Downloaded
		batch.TotalFailed += summary.Failed

		if err == nil {
			continue
		}
		if errs.IsFatal(err) {
			status.Error(sink, fmt.Sprintf("Aborting download process due to critical %s error.", p.tool))
			batch.Aborted = true
			batch.AbortReason = err.Error()
			log.WithError(err).Error("Batch aborted")
			return err
		}
		// Account-local trouble. The other targets still deserve a try.
		status.Warning(sink, fmt.Sprintf("Skipping download for %s due to critical scraping error.", name))
		log.WithError(err).Warn("Account skipped")
	}
	return nil
}
