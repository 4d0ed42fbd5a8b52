// Package worker runs a pipeline job on a background goroutine so the
// caller can keep draining status events. At most one job runs at a
// time; downloads are sequential by design, so a second concurrent run
// would only fight the first for bandwidth and output files.
package worker

import (
	"sync"
	"sync/atomic"

	"clipfetch/pkg/logger"
)

// Runner executes at most one job at a time
type Runner struct {
	logger logger.Logger
	busy   atomic.Bool
	wg     sync.WaitGroup
}

// New creates a Runner. A nil log falls back to the global logger.
func New(log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{logger: log}
}

// TryRun starts fn on a new goroutine and reports whether it was
// accepted. It returns false while a previous job is still running.
func (r *Runner) TryRun(name string, fn func()) bool {
	if !r.busy.CompareAndSwap(false, true) {
		r.logger.WarnWithFields("Job rejected, a run is already in progress", map[string]interface{}{
			"job": name,
		})
		return false
	}

	r.logger.DebugWithFields("Job started", map[string]interface{}{
		"job": name,
	})

	r.wg.Add(1)
	go func() {
		defer func() {
			r.busy.Store(false)
			r.logger.DebugWithFields("Job finished", map[string]interface{}{
				"job": name,
			})
			r.wg.Done()
		}()
		fn()
	}()

	return true
}

// Running reports whether a job is currently executing
func (r *Runner) Running() bool {
	return r.busy.Load()
}

// Wait blocks until the current job, if any, has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}
