package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"clipfetch/pkg/logger"
)

func TestTryRunExecutesJob(t *testing.T) {
	r := New(logger.NewTestLogger())

	var ran atomic.Bool
	if !r.TryRun("job", func() { ran.Store(true) }) {
		t.Fatal("expected idle runner to accept the job")
	}

	r.Wait()
	if !ran.Load() {
		t.Error("job did not run")
	}
	if r.Running() {
		t.Error("runner still reports running after Wait")
	}
}

func TestTryRunRejectsConcurrentJob(t *testing.T) {
	r := New(logger.NewTestLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	if !r.TryRun("first", func() {
		close(started)
		<-release
	}) {
		t.Fatal("expected first job to be accepted")
	}
	<-started

	if r.TryRun("second", func() { t.Error("second job must not run") }) {
		t.Error("expected busy runner to reject the second job")
	}
	if !r.Running() {
		t.Error("runner should report running while the job is active")
	}

	close(release)
	r.Wait()
}

func TestRunnerIsReusableAfterCompletion(t *testing.T) {
	r := New(logger.NewTestLogger())

	var runs atomic.Int32
	for i := 0; i < 3; i++ {
		if !r.TryRun("job", func() { runs.Add(1) }) {
			t.Fatalf("run %d rejected", i+1)
		}
		r.Wait()
	}

	if got := runs.Load(); got != 3 {
		t.Errorf("expected 3 runs, got %d", got)
	}
}

func TestWaitWithoutJobReturnsImmediately(t *testing.T) {
	r := New(logger.NewTestLogger())

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with no job running")
	}
}
