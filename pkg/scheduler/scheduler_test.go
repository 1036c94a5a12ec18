package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"GoldPredict/pkg/logger"
)

func newTestScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(logger.Nop(), time.UTC, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRunNowSkipsWhileRunning(t *testing.T) {
	var skips atomic.Int32
	s := newTestScheduler(t, WithSkipHook(func(string) { skips.Add(1) }))

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32
	err := s.Every("settlement", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Every: %v", err)
	}

	done := make(chan bool)
	go func() {
		ran, _ := s.RunNow("settlement")
		done <- ran
	}()
	<-started

	ran, err := s.RunNow("settlement")
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if ran {
		t.Fatalf("overlapping run should have been skipped")
	}
	if skips.Load() != 1 {
		t.Fatalf("skip hook calls = %d, want 1", skips.Load())
	}

	close(release)
	if !<-done {
		t.Fatalf("first run should report it ran")
	}
	if runs.Load() != 1 {
		t.Fatalf("runs = %d, want 1", runs.Load())
	}
}

func TestRunNowAppliesTimeout(t *testing.T) {
	s := newTestScheduler(t, WithTimeout(20*time.Millisecond))

	var ctxErr error
	_ = s.Every("ingest", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		ctxErr = ctx.Err()
		return ctxErr
	})
	if _, err := s.RunNow("ingest"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if !errors.Is(ctxErr, context.DeadlineExceeded) {
		t.Fatalf("ctx err = %v, want deadline exceeded", ctxErr)
	}
}

func TestRegistrationErrors(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) error { return nil }

	if err := s.Every("a", 0, noop); err == nil {
		t.Fatalf("zero interval should fail")
	}
	if err := s.Every("a", time.Minute, noop); err != nil {
		t.Fatalf("Every: %v", err)
	}
	if err := s.Every("a", time.Minute, noop); err == nil {
		t.Fatalf("duplicate name should fail")
	}
	if err := s.Cron("b", "not a cron", noop); err == nil {
		t.Fatalf("bad cron spec should fail")
	}
	if _, err := s.RunNow("missing"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("RunNow unknown = %v", err)
	}
}
