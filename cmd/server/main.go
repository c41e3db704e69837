// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/paperlens/internal/api"
	"github.com/tomtom215/paperlens/internal/app"
	"github.com/tomtom215/paperlens/internal/config"
	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/supervisor"
	"github.com/tomtom215/paperlens/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("storage", cfg.Storage.Backend).
		Str("backend_url", cfg.Backend.BaseURL).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Bool("events", cfg.Events.Enabled).
		Msg("Starting PaperLens with supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loadStart := time.Now()
	a, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize PaperLens")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}()
	logging.Info().
		Str("store", a.Store.Name()).
		Int("users", a.Engine.UserCount()).
		Dur("took", time.Since(loadStart)).
		Msg("Engine state restored")

	handler := api.NewHandler(api.HandlerOptions{
		Engine: a.Engine,
		Anchor: a.Anchor,
		Checks: a.ReadinessChecks(),
	})
	server := app.HTTPServer(cfg, api.NewRouter(handler, app.MiddlewareConfig(cfg)))

	// Bridge zerolog to slog for sutureslog
	tree := supervisor.New(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

	// === ADD SERVICES TO SUPERVISOR TREE ===

	if a.Bus != nil {
		tree.Add(supervisor.LayerData, services.NewEventLogService(a.Bus, logging.WithComponent("events")))
		logging.Info().Msg("Event log consumer added to supervisor tree")
	}

	if cfg.Scheduler.Enabled {
		sweep, err := services.NewSweepService(a.Engine, services.BatchServiceConfig{
			Schedule: schedule.Every(cfg.Scheduler.SweepInterval),
			Timeout:  cfg.Scheduler.RefreshTimeout,
		}, logging.WithComponent("scheduler"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create staleness sweep")
		}
		tree.Add(supervisor.LayerScheduler, sweep)

		weekly, err := services.NewAnchorService(a.Engine, services.BatchServiceConfig{
			Schedule: a.Anchor,
			Timeout:  cfg.Scheduler.RefreshTimeout,
		}, logging.WithComponent("scheduler"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create weekly anchor batch")
		}
		tree.Add(supervisor.LayerScheduler, weekly)

		logging.Info().
			Dur("sweep_interval", cfg.Scheduler.SweepInterval).
			Time("next_anchor", a.Anchor.Next(time.Now().In(a.Location))).
			Msg("Refresh schedulers added to supervisor tree")
	} else {
		logging.Info().Msg("Refresh schedulers disabled (SCHEDULER_ENABLED=false)")
	}

	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
