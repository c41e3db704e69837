// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package backend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/models"
)

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// The breaker opens once at least MinRequests were seen and the
	// failure ratio reached FailureRatio.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings returns 3 half-open calls, a 1 minute window, a 2
// minute open period and a 60% failure ratio over at least 10 requests.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "recommendation-backend",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerClient wraps a Client with a circuit breaker.
//
// The breaker runs on wall time inside sony/gobreaker. Engine tests drive
// the wrapped client directly and only the breaker tests exercise timing.
type BreakerClient struct {
	next   Client
	cb     *gobreaker.CircuitBreaker[struct{}]
	name   string
	logger zerolog.Logger
}

var _ Client = (*BreakerClient)(nil)

// NewBreakerClient guards next with a breaker configured by s.
func NewBreakerClient(next Client, s BreakerSettings, logger zerolog.Logger) *BreakerClient {
	if s.Name == "" {
		s.Name = DefaultBreakerSettings().Name
	}
	bc := &BreakerClient{
		next:   next,
		name:   s.Name,
		logger: logger.With().Str("component", "backend-breaker").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	bc.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				bc.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			bc.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
		// A cancelled caller says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return bc
}

// RefreshWeekly forwards to the wrapped client under breaker protection.
func (b *BreakerClient) RefreshWeekly(ctx context.Context, userID string, rc *models.RecommendationContext) error {
	return b.execute(func() error { return b.next.RefreshWeekly(ctx, userID, rc) })
}

// SyncSearchHistory forwards to the wrapped client under breaker protection.
func (b *BreakerClient) SyncSearchHistory(ctx context.Context, userID string, payload SearchHistoryPayload) error {
	return b.execute(func() error { return b.next.SyncSearchHistory(ctx, userID, payload) })
}

// State reports the current breaker state as "closed", "half-open" or "open".
func (b *BreakerClient) State() string { return stateToString(b.cb.State()) }

func (b *BreakerClient) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		b.logger.Debug().Err(err).Msg("Request rejected by circuit breaker")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return err
}

// IsRejected reports whether err came from an open or saturated breaker.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
