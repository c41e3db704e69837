// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/models"
)

func testBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreakerClient_OpensAfterFailures(t *testing.T) {
	fake := NewFakeClient()
	fake.SetRefreshErr(errors.New("connection refused"))
	bc := NewBreakerClient(fake, testBreakerSettings("test-opens"), zerolog.Nop())

	ctx := context.Background()
	rc := &models.RecommendationContext{UserID: "u"}
	for i := 0; i < 3; i++ {
		if err := bc.RefreshWeekly(ctx, "u", rc); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}

	if got := bc.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	err := bc.RefreshWeekly(ctx, "u", rc)
	if !IsRejected(err) {
		t.Fatalf("error = %v, want rejection", err)
	}
	if n := fake.RefreshCount("u"); n != 3 {
		t.Errorf("backend saw %d calls, want 3", n)
	}

	if v := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-opens")); v != 2 {
		t.Errorf("state gauge = %v, want 2", v)
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-opens", "rejected")); v != 1 {
		t.Errorf("rejected counter = %v, want 1", v)
	}
}

func TestBreakerClient_StaysClosedBelowMinRequests(t *testing.T) {
	fake := NewFakeClient()
	fake.SetSyncErr(errors.New("boom"))
	bc := NewBreakerClient(fake, testBreakerSettings("test-min"), zerolog.Nop())

	for i := 0; i < 2; i++ {
		_ = bc.SyncSearchHistory(context.Background(), "u", SearchHistoryPayload{})
	}
	if got := bc.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestBreakerClient_CancelledCallsDoNotTrip(t *testing.T) {
	fake := NewFakeClient()
	fake.SetSyncErr(context.Canceled)
	bc := NewBreakerClient(fake, testBreakerSettings("test-cancel"), zerolog.Nop())

	for i := 0; i < 5; i++ {
		_ = bc.SyncSearchHistory(context.Background(), "u", SearchHistoryPayload{})
	}
	if got := bc.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestBreakerClient_PassesThroughSuccess(t *testing.T) {
	fake := NewFakeClient()
	bc := NewBreakerClient(fake, testBreakerSettings("test-ok"), zerolog.Nop())

	if err := bc.SyncSearchHistory(context.Background(), "u", SearchHistoryPayload{}); err != nil {
		t.Fatalf("SyncSearchHistory() error = %v", err)
	}
	if len(fake.Syncs()) != 1 {
		t.Errorf("syncs = %d, want 1", len(fake.Syncs()))
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-ok", "success")); v != 1 {
		t.Errorf("success counter = %v, want 1", v)
	}
}
