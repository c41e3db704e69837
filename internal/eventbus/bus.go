// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package eventbus fans profile lifecycle notifications out to in-process
// subscribers over a Watermill GoChannel pub/sub. Topics are the
// models.EventKind values; payloads are JSON encoded models.ProfileEvent.
//
// The bus is non-persistent: events published with no subscriber are
// dropped, which matches their role as notifications rather than a log.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/models"
)

// MetadataCorrelationID carries the publisher's correlation id.
const MetadataCorrelationID = "correlation_id"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("eventbus: closed")

// Topics lists every topic the engine publishes to.
var Topics = []models.EventKind{
	models.EventProfileUpdated,
	models.EventRecommendationsRefreshed,
	models.EventProfileErased,
	models.EventWeeklyMixUpdated,
}

// Config tunes the underlying GoChannel.
type Config struct {
	// BufferSize is the per-subscriber output buffer.
	BufferSize int64
}

// Bus publishes ProfileEvents. It implements personalize.EventPublisher.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a bus. Watermill's own logging goes through the slog adapter
// so it shares the zerolog output.
func New(cfg Config, logger zerolog.Logger) *Bus {
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger("watermill"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.BufferSize}, wmLogger),
		logger: logger.With().Str("component", "eventbus").Logger(),
	}
}

// Publish encodes ev and publishes it on the topic named by its kind.
func (b *Bus) Publish(ctx context.Context, ev models.ProfileEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Kind, err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(string(ev.Kind), msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}
	return nil
}

// Subscribe returns the raw message stream for one topic. Every message must
// be acked or nacked before the next one is delivered.
func (b *Bus) Subscribe(ctx context.Context, kind models.EventKind) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.pubsub.Subscribe(ctx, string(kind))
}

// Handler receives decoded events from Consume.
type Handler func(ctx context.Context, ev models.ProfileEvent)

// Consume subscribes to the given kinds (all Topics when none are named)
// and calls h for every event until ctx is done. Undecodable messages are
// logged and acked.
func (b *Bus) Consume(ctx context.Context, h Handler, kinds ...models.EventKind) error {
	if len(kinds) == 0 {
		kinds = Topics
	}

	var wg sync.WaitGroup
	for _, kind := range kinds {
		ch, err := b.Subscribe(ctx, kind)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", kind, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range ch {
				b.dispatch(ctx, msg, h)
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (b *Bus) dispatch(ctx context.Context, msg *message.Message, h Handler) {
	defer msg.Ack()

	ev, err := Decode(msg)
	if err != nil {
		b.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable event")
		return
	}
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	h(ctx, ev)
}

// Decode parses a message payload into a ProfileEvent.
func Decode(msg *message.Message) (models.ProfileEvent, error) {
	var ev models.ProfileEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return models.ProfileEvent{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}

// Close shuts the pub/sub down and closes every subscriber channel.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
