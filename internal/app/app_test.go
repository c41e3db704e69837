// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/paperlens/internal/config"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            9999,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    7 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"https://papers.example"},
			RateLimitReqs:   42,
			RateLimitWindow: time.Second,
		},
		Storage: config.StorageConfig{Backend: "memory"},
		Backend: config.BackendConfig{
			BaseURL: "http://backend.test/api",
			Timeout: time.Second,
			Breaker: config.BreakerConfig{
				MaxRequests:  2,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  4,
				FailureRatio: 0.5,
			},
		},
		Engine: config.EngineConfig{
			MaxSearchHistory:         11,
			MaxActivityHistory:       12,
			MaxBehaviorEvents:        13,
			MaxRecommendationHistory: 14,
			SyncMinInterval:          time.Minute,
			SyncRecentSearches:       3,
			SyncRecentActivities:     4,
			LoadConcurrency:          2,
		},
		Scheduler: config.SchedulerConfig{
			Enabled:       true,
			SweepInterval: time.Hour,
			UserDelay:     250 * time.Millisecond,
		},
		WeeklyMix: models.DefaultWeeklyMixConfig(),
	}
}

func TestEngineConfigMapping(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	ec := EngineConfig(cfg)

	if ec.MaxSearchHistory != 11 || ec.MaxActivityHistory != 12 {
		t.Errorf("history limits = %d/%d, want 11/12", ec.MaxSearchHistory, ec.MaxActivityHistory)
	}
	if ec.MaxBehaviorEvents != 13 || ec.MaxRecommendationHistory != 14 {
		t.Errorf("event limits = %d/%d, want 13/14", ec.MaxBehaviorEvents, ec.MaxRecommendationHistory)
	}
	if ec.UserDelay != 250*time.Millisecond {
		t.Errorf("UserDelay = %v, want scheduler.user_delay", ec.UserDelay)
	}
	if ec.LoadConcurrency != 2 {
		t.Errorf("LoadConcurrency = %d, want 2", ec.LoadConcurrency)
	}
	if ec.WeeklyMix != cfg.WeeklyMix {
		t.Errorf("WeeklyMix = %+v, want %+v", ec.WeeklyMix, cfg.WeeklyMix)
	}
}

func TestBreakerSettingsMapping(t *testing.T) {
	t.Parallel()

	s := BreakerSettings(testConfig())
	if s.Name == "" {
		t.Error("breaker name should keep its default")
	}
	if s.MaxRequests != 2 || s.MinRequests != 4 {
		t.Errorf("requests = %d/%d, want 2/4", s.MaxRequests, s.MinRequests)
	}
	if s.Timeout != 30*time.Second || s.FailureRatio != 0.5 {
		t.Errorf("timeout/ratio = %v/%v", s.Timeout, s.FailureRatio)
	}
}

func TestAnchorSchedule(t *testing.T) {
	t.Parallel()

	// Wednesday
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cron    string
		want    time.Time
		wantErr bool
	}{
		{name: "default monday morning", cron: "", want: time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)},
		{name: "custom cron", cron: "30 7 * * 5", want: time.Date(2026, 3, 6, 7, 30, 0, 0, time.UTC)},
		{name: "invalid cron", cron: "not a cron", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Scheduler.AnchorCron = tt.cron
			s, err := AnchorSchedule(cfg, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("AnchorSchedule: %v", err)
			}
			if got := s.Next(now); !got.Equal(tt.want) {
				t.Errorf("Next = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMiddlewareConfigMapping(t *testing.T) {
	t.Parallel()

	mw := MiddlewareConfig(testConfig())
	if len(mw.CORSAllowedOrigins) != 1 || mw.CORSAllowedOrigins[0] != "https://papers.example" {
		t.Errorf("CORS origins = %v", mw.CORSAllowedOrigins)
	}
	if mw.RateLimitRequests != 42 || mw.RateLimitWindow != time.Second {
		t.Errorf("rate limit = %d per %v", mw.RateLimitRequests, mw.RateLimitWindow)
	}
	if len(mw.CORSAllowedMethods) == 0 {
		t.Error("CORS methods should keep their defaults")
	}
}

type fixedBreaker string

func (b fixedBreaker) State() string { return string(b) }

type failingStore struct {
	storage.Store
}

func (failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestReadinessChecks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		checks := readinessChecks(storage.NewMemoryStore(), fixedBreaker("closed"))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}
	})

	t.Run("breaker open", func(t *testing.T) {
		t.Parallel()
		checks := readinessChecks(storage.NewMemoryStore(), fixedBreaker("open"))
		if err := checks["backend"](ctx); !errors.Is(err, errBreakerOpen) {
			t.Errorf("backend check = %v, want errBreakerOpen", err)
		}
	})

	t.Run("store down", func(t *testing.T) {
		t.Parallel()
		checks := readinessChecks(failingStore{}, fixedBreaker("half-open"))
		if err := checks["storage"](ctx); err == nil {
			t.Error("storage check should fail")
		}
		if err := checks["backend"](ctx); err != nil {
			t.Errorf("half-open breaker should be ready: %v", err)
		}
	})
}

func TestHTTPServer(t *testing.T) {
	t.Parallel()

	srv := HTTPServer(testConfig(), nil)
	if srv.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 7*time.Second {
		t.Errorf("timeouts = %v/%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestNewAndClose(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Events = config.EventsConfig{Enabled: true, BufferSize: 8}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Bus == nil {
		t.Error("event bus should be created when events are enabled")
	}
	if a.Store.Name() != storage.BackendMemory {
		t.Errorf("store = %q, want memory", a.Store.Name())
	}
	if a.Engine.UserCount() != 0 {
		t.Errorf("fresh store should restore no users, got %d", a.Engine.UserCount())
	}
	for name, check := range a.ReadinessChecks() {
		if err := check(context.Background()); err != nil {
			t.Errorf("%s not ready: %v", name, err)
		}
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewRejectsBadInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "bad anchor", mutate: func(c *config.Config) { c.Scheduler.AnchorCron = "every tuesday" }},
		{name: "unknown store", mutate: func(c *config.Config) { c.Storage.Backend = "etcd" }},
		{name: "non-http backend", mutate: func(c *config.Config) { c.Backend.BaseURL = "ftp://backend.test" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
