// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/eventbus"
	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/models"
)

// EventConsumer is the subscribe side of the event bus.
type EventConsumer interface {
	Consume(ctx context.Context, h eventbus.Handler, kinds ...models.EventKind) error
}

// EventLogService writes every profile lifecycle event to the log, giving
// an audit trail of refreshes and erasures.
type EventLogService struct {
	bus    EventConsumer
	logger zerolog.Logger
}

// NewEventLogService creates the audit consumer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLogService(bus EventConsumer, logger zerolog.Logger) *EventLogService {
	return &EventLogService{
		bus:    bus,
		logger: logger.With().Str("service", "event-log").Logger(),
	}
}

// Serve implements suture.Service.
func (s *EventLogService) Serve(ctx context.Context) error {
	err := s.bus.Consume(ctx, s.handle)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Event consumer stopped")
	}
	return err
}

func (s *EventLogService) handle(ctx context.Context, ev models.ProfileEvent) {
	e := s.logger.Debug()
	if ev.Kind == models.EventProfileErased || ev.Kind == models.EventWeeklyMixUpdated {
		e = s.logger.Info()
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		e = e.Str("correlation_id", id)
	}
	e.Str("event", string(ev.Kind)).
		Str("user_id", ev.UserID).
		Str("reason", ev.Reason).
		Time("at", ev.Timestamp).
		Msg("Profile event")
}

func (s *EventLogService) String() string {
	return "event-log"
}
