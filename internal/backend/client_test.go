// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(Config{BaseURL: srv.URL + "/api/", Timeout: 5 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	return c
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"ftp://example.com", "://nope", "example.com"} {
		if _, err := NewHTTPClient(Config{BaseURL: raw}, zerolog.Nop()); err == nil {
			t.Errorf("NewHTTPClient(%q) expected error", raw)
		}
	}
}

func TestHTTPClient_RefreshWeekly(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	var gotCtx *models.RecommendationContext
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("force_refresh")
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		rc, err := DecodeContextHeader(r.Header.Get(HeaderRecommendationContext))
		if err != nil {
			t.Errorf("DecodeContextHeader() error = %v", err)
		}
		gotCtx = rc
		w.WriteHeader(http.StatusOK)
	})

	rc := &models.RecommendationContext{
		UserID:         "user-1",
		DerivedDomains: []string{"genomics"},
		Preferences:    models.DefaultPreferences(),
		WeeklyMix:      models.DefaultWeeklyMixConfig(),
	}
	if err := c.RefreshWeekly(context.Background(), "user-1", rc); err != nil {
		t.Fatalf("RefreshWeekly() error = %v", err)
	}

	if gotPath != "/api/recommendations/weekly/user-1" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "true" {
		t.Errorf("force_refresh = %q, want true", gotQuery)
	}
	if gotCtx == nil || gotCtx.UserID != "user-1" || len(gotCtx.DerivedDomains) != 1 {
		t.Errorf("decoded context = %+v", gotCtx)
	}
}

func TestHTTPClient_RefreshWeekly_NonSuccess(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend busy", http.StatusServiceUnavailable)
	})

	err := c.RefreshWeekly(context.Background(), "u", &models.RecommendationContext{UserID: "u"})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("error = %v, want ErrUnexpectedStatus", err)
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not *StatusError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || se.Body != "backend busy" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestHTTPClient_RefreshWeekly_NilContext(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request should not be sent")
	})
	if err := c.RefreshWeekly(context.Background(), "u", nil); err == nil {
		t.Fatal("expected error for nil context")
	}
}

func TestHTTPClient_SyncSearchHistory(t *testing.T) {
	t.Parallel()

	var gotUser, gotPath string
	var gotBody SearchHistoryPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(HeaderUserID)
		gotPath = r.URL.Path
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	})

	payload := SearchHistoryPayload{
		Searches: []models.SearchHistoryEntry{{Query: "crispr off-target", ResultCount: 12}},
	}
	if err := c.SyncSearchHistory(context.Background(), "user 2", payload); err != nil {
		t.Fatalf("SyncSearchHistory() error = %v", err)
	}

	if gotUser != "user 2" {
		t.Errorf("X-User-ID = %q", gotUser)
	}
	if gotPath != "/api/recommendations/search-history/user 2" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody.Searches) != 1 || gotBody.Searches[0].Query != "crispr off-target" {
		t.Errorf("searches = %+v", gotBody.Searches)
	}
	if gotBody.Activities == nil {
		t.Error("activities should be encoded as an empty list, not null")
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.SyncSearchHistory(ctx, "u", SearchHistoryPayload{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestContextHeader_RoundTrip(t *testing.T) {
	t.Parallel()

	in := &models.RecommendationContext{
		UserID:         "u",
		DerivedDomains: []string{"neuroscience", "imaging"},
	}
	header, err := EncodeContextHeader(in)
	if err != nil {
		t.Fatalf("EncodeContextHeader() error = %v", err)
	}
	out, err := DecodeContextHeader(header)
	if err != nil {
		t.Fatalf("DecodeContextHeader() error = %v", err)
	}
	if out.UserID != "u" || len(out.DerivedDomains) != 2 {
		t.Errorf("round trip = %+v", out)
	}

	if _, err := DecodeContextHeader("%%%"); err == nil {
		t.Error("expected error for invalid base64")
	}
}
