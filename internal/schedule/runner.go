// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is the work a Runner executes on each activation.
type Job func(ctx context.Context) error

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Name identifies the runner in logs.
	Name string

	Schedule Schedule
	Job      Job

	// Clock defaults to RealClock.
	Clock Clock

	// RunOnStart executes the job once before waiting for the first activation.
	RunOnStart bool

	// Timeout bounds a single job execution. Zero means no bound.
	Timeout time.Duration
}

// Runner waits until the schedule's next instant, runs the job, then
// recomputes the next instant from the clock and waits again.
type Runner struct {
	cfg    RunnerConfig
	logger zerolog.Logger

	mu      sync.RWMutex
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
}

// NewRunner validates cfg and returns a Runner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRunner(cfg RunnerConfig, logger zerolog.Logger) (*Runner, error) {
	if cfg.Schedule == nil {
		return nil, errors.New("runner requires a schedule")
	}
	if cfg.Job == nil {
		return nil, errors.New("runner requires a job")
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Name == "" {
		cfg.Name = "runner"
	}
	return &Runner{
		cfg:    cfg,
		logger: logger.With().Str("runner", cfg.Name).Logger(),
	}, nil
}

// Run blocks until ctx is canceled and always returns ctx.Err().
// Job errors are logged and do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.RunOnStart {
		r.execute(ctx)
	}

	for {
		now := r.cfg.Clock.Now()
		next := r.cfg.Schedule.Next(now)
		if next.IsZero() {
			r.logger.Warn().Msg("Schedule has no further activations")
			<-ctx.Done()
			return ctx.Err()
		}

		r.mu.Lock()
		r.nextRun = next
		r.mu.Unlock()

		r.logger.Debug().Time("next_run", next).Dur("wait", next.Sub(now)).Msg("Waiting for next activation")

		timer := r.cfg.Clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
			r.execute(ctx)
		}
	}
}

func (r *Runner) execute(ctx context.Context) {
	jobCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := r.cfg.Clock.Now()
	err := r.safeRun(jobCtx)

	r.mu.Lock()
	r.lastRun = start
	r.lastErr = err
	r.runs++
	r.mu.Unlock()

	if err != nil {
		r.logger.Error().Err(err).Msg("Scheduled job failed")
		return
	}
	r.logger.Info().Time("started_at", start).Msg("Scheduled job completed")
}

func (r *Runner) safeRun(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return r.cfg.Job(ctx)
}

// Status is a snapshot of runner state.
type Status struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run,omitempty"`
	LastErr string    `json:"last_error,omitempty"`
	Runs    int       `json:"runs"`
}

// Status returns the current runner state.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Status{Name: r.cfg.Name, NextRun: r.nextRun, LastRun: r.lastRun, Runs: r.runs}
	if r.lastErr != nil {
		s.LastErr = r.lastErr.Error()
	}
	return s
}

func (r *Runner) String() string { return r.cfg.Name }
