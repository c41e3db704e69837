// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/backend"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/storage"
)

// testStart is a Wednesday morning.
var testStart = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ProfileEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev models.ProfileEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) kinds(userID string) []models.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EventKind
	for _, ev := range r.events {
		if ev.UserID == userID {
			out = append(out, ev.Kind)
		}
	}
	return out
}

type testEnv struct {
	eng     *Engine
	clock   *schedule.FakeClock
	store   *storage.MemoryStore
	backend *backend.FakeClient
	pub     *recordingPublisher
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:   schedule.NewFakeClock(testStart),
		store:   storage.NewMemoryStore(),
		backend: backend.NewFakeClient(),
		pub:     &recordingPublisher{},
	}
	cfg := DefaultConfig()
	cfg.UserDelay = 0

	o := Options{
		Config:    cfg,
		Clock:     env.clock,
		Store:     env.store,
		Backend:   env.backend,
		Publisher: env.pub,
		Location:  time.UTC,
		Logger:    zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}

	eng, err := New(o)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.eng = eng
	return env
}

func withoutBackend(o *Options) { o.Backend = nil }

// reopen builds a second engine over the same store and loads it.
func (env *testEnv) reopen(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.UserDelay = 0
	eng, err := New(Options{
		Config:   cfg,
		Clock:    env.clock,
		Store:    env.store,
		Backend:  env.backend,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := eng.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return eng
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func floatEq(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
