// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/eventbus"
	"github.com/tomtom215/paperlens/internal/models"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type stubConsumer struct {
	events []models.ProfileEvent
	err    error
}

func (s *stubConsumer) Consume(ctx context.Context, h eventbus.Handler, _ ...models.EventKind) error {
	for _, ev := range s.events {
		h(ctx, ev)
	}
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestEventLogService_LogsEvents(t *testing.T) {
	var out syncBuffer
	logger := zerolog.New(&out).Level(zerolog.DebugLevel)

	bus := &stubConsumer{events: []models.ProfileEvent{
		{Kind: models.EventProfileErased, UserID: "u1", Timestamp: time.Now()},
		{Kind: models.EventRecommendationsRefreshed, UserID: "u2", Reason: "weekly"},
	}}
	svc := NewEventLogService(bus, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v, want deadline exceeded", err)
	}

	logged := out.String()
	for _, want := range []string{`"event":"profile.erased"`, `"user_id":"u1"`, `"event":"recommendations.refreshed"`, `"reason":"weekly"`} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %s:\n%s", want, logged)
		}
	}
}

func TestEventLogService_PropagatesConsumerError(t *testing.T) {
	boom := errors.New("subscribe failed")
	svc := NewEventLogService(&stubConsumer{err: boom}, zerolog.Nop())
	if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve returned %v, want %v", err, boom)
	}
}

func TestEventLogService_WithBus(t *testing.T) {
	var out syncBuffer
	bus := eventbus.New(eventbus.Config{BufferSize: 8}, zerolog.Nop())
	defer bus.Close()

	svc := NewEventLogService(bus, zerolog.New(&out).Level(zerolog.DebugLevel))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	ev := models.ProfileEvent{Kind: models.EventWeeklyMixUpdated, Reason: "api"}
	waitUntil(t, "event logged", func() bool {
		_ = bus.Publish(context.Background(), ev)
		return strings.Contains(out.String(), "weekly_mix.updated")
	})

	cancel()
	<-done
}
