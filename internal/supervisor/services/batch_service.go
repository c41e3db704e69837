// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/schedule"
)

// BatchRefresher is the engine surface the scheduled jobs drive.
type BatchRefresher interface {
	SweepStaleUsers(ctx context.Context) personalize.BatchResult
	RefreshAllUsers(ctx context.Context) personalize.BatchResult
}

// BatchServiceConfig configures a BatchService.
type BatchServiceConfig struct {
	Schedule schedule.Schedule

	// Clock defaults to schedule.RealClock.
	Clock schedule.Clock

	// Timeout bounds one batch. Zero means unbounded.
	Timeout time.Duration

	// RunOnStart runs a batch immediately when the service starts.
	RunOnStart bool
}

// BatchService runs one engine batch job on a schedule.
type BatchService struct {
	runner   *schedule.Runner
	schedule schedule.Schedule
	clock    schedule.Clock
	anchor   bool
	logger   zerolog.Logger
}

// NewSweepService checks every user for staleness on cfg.Schedule
// (normally schedule.Every(time.Hour)) and refreshes the stale ones.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSweepService(engine BatchRefresher, cfg BatchServiceConfig, logger zerolog.Logger) (*BatchService, error) {
	return newBatchService("staleness-sweep", false, cfg, logger, func(ctx context.Context) personalize.BatchResult {
		return engine.SweepStaleUsers(ctx)
	})
}

// NewAnchorService refreshes every user at each weekly anchor and exports
// the next activation as metrics.NextAnchorTimestamp.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAnchorService(engine BatchRefresher, cfg BatchServiceConfig, logger zerolog.Logger) (*BatchService, error) {
	return newBatchService("weekly-anchor", true, cfg, logger, func(ctx context.Context) personalize.BatchResult {
		return engine.RefreshAllUsers(ctx)
	})
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newBatchService(name string, anchor bool, cfg BatchServiceConfig, logger zerolog.Logger, run func(context.Context) personalize.BatchResult) (*BatchService, error) {
	if cfg.Clock == nil {
		cfg.Clock = schedule.RealClock{}
	}
	s := &BatchService{
		schedule: cfg.Schedule,
		clock:    cfg.Clock,
		anchor:   anchor,
		logger:   logger.With().Str("service", name).Logger(),
	}

	job := func(ctx context.Context) error {
		res := run(ctx)
		s.logger.Debug().
			Int("users", res.Users).
			Int("refreshed", res.Refreshed).
			Int("failed", res.Failed).
			Msg("Batch finished")
		s.exportNext()
		return nil
	}

	runner, err := schedule.NewRunner(schedule.RunnerConfig{
		Name:       name,
		Schedule:   cfg.Schedule,
		Job:        job,
		Clock:      cfg.Clock,
		RunOnStart: cfg.RunOnStart,
		Timeout:    cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	s.runner = runner
	return s, nil
}

func (s *BatchService) exportNext() {
	if !s.anchor {
		return
	}
	if next := s.schedule.Next(s.clock.Now()); !next.IsZero() {
		metrics.NextAnchorTimestamp.Set(float64(next.Unix()))
	}
}

// Serve implements suture.Service.
func (s *BatchService) Serve(ctx context.Context) error {
	s.exportNext()
	s.logger.Info().Msg("Batch service starting")
	return s.runner.Run(ctx)
}

// Status reports the runner's last and next activation.
func (s *BatchService) Status() schedule.Status {
	return s.runner.Status()
}

func (s *BatchService) String() string {
	return s.runner.String()
}
