// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/backend"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/storage"
)

// testNow is a Wednesday; the next Monday 06:00 UTC is 2026-03-09.
var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	engine  *personalize.Engine
	backend *backend.FakeClient
	clock   *schedule.FakeClock
}

func newTestServer(t *testing.T, checks map[string]ReadinessCheck) *testServer {
	t.Helper()

	clock := schedule.NewFakeClock(testNow)
	fake := backend.NewFakeClient()
	cfg := personalize.DefaultConfig()
	cfg.UserDelay = 0

	eng, err := personalize.New(personalize.Options{
		Config:   cfg,
		Clock:    clock,
		Store:    storage.NewMemoryStore(),
		Backend:  fake,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("personalize.New: %v", err)
	}
	if err := eng.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := NewHandler(HandlerOptions{
		Engine: eng,
		Anchor: schedule.MondayMorning(time.UTC),
		Clock:  clock,
		Checks: checks,
	})
	mw := DefaultMiddlewareConfig()
	mw.RateLimitDisabled = true

	return &testServer{handler: NewRouter(h, mw), engine: eng, backend: fake, clock: clock}
}

// do sends a request and decodes the envelope; data is decoded into out
// when out is non-nil.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("decode data %s: %v", env.Data, err)
			}
		}
	}
	return rec, env
}
