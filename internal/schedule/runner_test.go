// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewRunner_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewRunner(RunnerConfig{Job: func(context.Context) error { return nil }}, zerolog.Nop()); err == nil {
		t.Error("expected error without schedule")
	}
	if _, err := NewRunner(RunnerConfig{Schedule: Every(time.Hour)}, zerolog.Nop()); err == nil {
		t.Error("expected error without job")
	}
}

func TestRunner_RunsAtAnchorAndReschedules(t *testing.T) {
	t.Parallel()

	// Wednesday; the first activation is the following Monday 06:00.
	clock := NewFakeClock(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC))
	var runs atomic.Int32
	fired := make(chan time.Time, 4)

	r, err := NewRunner(RunnerConfig{
		Name:     "weekly-anchor",
		Schedule: MondayMorning(time.UTC),
		Clock:    clock,
		Job: func(context.Context) error {
			runs.Add(1)
			fired <- clock.Now()
			return nil
		},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, "first timer", func() bool { return clock.Waiters() == 1 })
	if want := time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC); !r.Status().NextRun.Equal(want) {
		t.Errorf("NextRun = %v, want %v", r.Status().NextRun, want)
	}

	// Advancing to just before the anchor must not fire.
	clock.Set(time.Date(2026, 1, 12, 5, 59, 0, 0, time.UTC))
	if runs.Load() != 0 {
		t.Fatal("job fired before anchor")
	}

	clock.Set(time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC))
	<-fired
	waitFor(t, "rescheduled timer", func() bool { return clock.Waiters() == 1 })
	if want := time.Date(2026, 1, 19, 6, 0, 0, 0, time.UTC); !r.Status().NextRun.Equal(want) {
		t.Errorf("rescheduled NextRun = %v, want %v", r.Status().NextRun, want)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
}

func TestRunner_RunOnStartAndErrors(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	var calls atomic.Int32

	r, err := NewRunner(RunnerConfig{
		Name:       "sweep",
		Schedule:   Every(time.Hour),
		Clock:      clock,
		RunOnStart: true,
		Job: func(context.Context) error {
			if calls.Add(1) == 2 {
				panic("boom")
			}
			return errors.New("backend down")
		},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	waitFor(t, "run on start", func() bool { return r.Status().Runs == 1 })
	if r.Status().LastErr != "backend down" {
		t.Errorf("LastErr = %q", r.Status().LastErr)
	}

	waitFor(t, "timer", func() bool { return clock.Waiters() == 1 })
	clock.Advance(time.Hour)
	waitFor(t, "second run", func() bool { return r.Status().Runs == 2 })
	if r.Status().LastErr == "" {
		t.Error("expected panic to be recorded as error")
	}

	waitFor(t, "loop continues after panic", func() bool { return clock.Waiters() == 1 })
}

func TestFakeClock_TimerStop(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Unix(0, 0))
	tm := clock.NewTimer(time.Minute)
	if !tm.Stop() {
		t.Error("Stop on pending timer should return true")
	}
	clock.Advance(time.Hour)
	select {
	case <-tm.C():
		t.Error("stopped timer fired")
	default:
	}
	if tm.Stop() {
		t.Error("second Stop should return false")
	}
}
