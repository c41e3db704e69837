// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package app assembles the PaperLens runtime from a loaded configuration.
//
// Both the server and paperlensctl build their engine through New so the
// two binaries always agree on storage layout, backend resilience settings
// and the weekly anchor.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/paperlens/internal/api"
	"github.com/tomtom215/paperlens/internal/backend"
	"github.com/tomtom215/paperlens/internal/config"
	"github.com/tomtom215/paperlens/internal/eventbus"
	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/storage"
)

// errBreakerOpen fails the readiness check while backend calls are rejected.
var errBreakerOpen = errors.New("backend circuit breaker is open")

// App holds the long-lived components shared by every entry point.
type App struct {
	Config   *config.Config
	Store    storage.Store
	Backend  *backend.BreakerClient
	Bus      *eventbus.Bus // nil when events are disabled
	Engine   *personalize.Engine
	Anchor   schedule.Schedule
	Location *time.Location
}

// New opens the store, builds the backend client and event bus, and
// restores the engine's persisted state.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := cfg.Location()
	anchor, err := AnchorSchedule(cfg, loc)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, StorageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	a := &App{
		Config:   cfg,
		Store:    storage.Instrument(store),
		Anchor:   anchor,
		Location: loc,
	}

	httpClient, err := backend.NewHTTPClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logging.WithComponent("backend"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	a.Backend = backend.NewBreakerClient(httpClient, BreakerSettings(cfg), logging.WithComponent("backend"))

	var publisher personalize.EventPublisher
	if cfg.Events.Enabled {
		a.Bus = eventbus.New(eventbus.Config{BufferSize: cfg.Events.BufferSize}, logging.WithComponent("eventbus"))
		publisher = a.Bus
	}

	a.Engine, err = personalize.New(personalize.Options{
		Config:    EngineConfig(cfg),
		Store:     a.Store,
		Backend:   a.Backend,
		Publisher: publisher,
		Location:  loc,
		Logger:    logging.WithComponent("engine"),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.Engine.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("restore engine state: %w", err)
	}
	return a, nil
}

// Close shuts the event bus down before the store.
func (a *App) Close() error {
	var errs []error
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close profile store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ReadinessChecks returns the /health/ready probes for a's dependencies.
func (a *App) ReadinessChecks() map[string]api.ReadinessCheck {
	return readinessChecks(a.Store, a.Backend)
}

// StorageConfig maps the storage section onto storage.Config.
func StorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Backend:       cfg.Storage.Backend,
		Path:          cfg.Storage.Path,
		SyncWrites:    cfg.Storage.SyncWrites,
		Compression:   cfg.Storage.Compression,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPassword: cfg.Storage.RedisPassword,
	}
}

// BreakerSettings maps the backend breaker section, keeping the default name.
func BreakerSettings(cfg *config.Config) backend.BreakerSettings {
	s := backend.DefaultBreakerSettings()
	s.MaxRequests = cfg.Backend.Breaker.MaxRequests
	s.Interval = cfg.Backend.Breaker.Interval
	s.Timeout = cfg.Backend.Breaker.Timeout
	s.MinRequests = cfg.Backend.Breaker.MinRequests
	s.FailureRatio = cfg.Backend.Breaker.FailureRatio
	return s
}

// EngineConfig maps the engine, scheduler and weekly mix sections.
func EngineConfig(cfg *config.Config) personalize.Config {
	ec := personalize.DefaultConfig()
	ec.MaxSearchHistory = cfg.Engine.MaxSearchHistory
	ec.MaxActivityHistory = cfg.Engine.MaxActivityHistory
	ec.MaxBehaviorEvents = cfg.Engine.MaxBehaviorEvents
	ec.MaxRecommendationHistory = cfg.Engine.MaxRecommendationHistory
	ec.SyncMinInterval = cfg.Engine.SyncMinInterval
	ec.SyncRecentSearches = cfg.Engine.SyncRecentSearches
	ec.SyncRecentActivities = cfg.Engine.SyncRecentActivities
	ec.LoadConcurrency = cfg.Engine.LoadConcurrency
	ec.UserDelay = cfg.Scheduler.UserDelay
	ec.WeeklyMix = cfg.WeeklyMix
	return ec
}

// AnchorSchedule returns the weekly batch schedule. An empty cron
// expression means Monday 06:00 in loc.
func AnchorSchedule(cfg *config.Config, loc *time.Location) (schedule.Schedule, error) {
	if cfg.Scheduler.AnchorCron == "" {
		return schedule.MondayMorning(loc), nil
	}
	s, err := schedule.ParseSchedule(cfg.Scheduler.AnchorCron, loc)
	if err != nil {
		return nil, fmt.Errorf("anchor schedule: %w", err)
	}
	return s, nil
}

// MiddlewareConfig maps the security section onto the API middleware.
func MiddlewareConfig(cfg *config.Config) api.MiddlewareConfig {
	mw := api.DefaultMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mw
}

// HTTPServer builds the listener for handler from the server section.
func HTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

type breakerState interface {
	State() string
}

// readinessChecks probes the store with a key lookup and reports the
// breaker state. A missing key is a healthy answer.
func readinessChecks(store storage.Store, breaker breakerState) map[string]api.ReadinessCheck {
	return map[string]api.ReadinessCheck{
		"storage": func(ctx context.Context) error {
			_, err := store.Load(ctx, personalize.AutomationKey)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			return nil
		},
		"backend": func(context.Context) error {
			if breaker.State() == "open" {
				return errBreakerOpen
			}
			return nil
		},
	}
}
