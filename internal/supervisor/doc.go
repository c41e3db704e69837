// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

/*
Package supervisor runs the PaperLens long-running services under a suture v4
tree with one child supervisor per Layer:

	paperlens
	├── data-layer       EventLogService (events.enabled)
	├── scheduler-layer  staleness sweep, weekly anchor batch (scheduler.enabled)
	└── api-layer        HTTPServerService

Supervisor events go through sutureslog to logging.NewSlogLogger, so they
land in the zerolog stream with component "supervisor".

	tree := supervisor.New(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.Add(supervisor.LayerScheduler, sweep)
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout, log))
	err := <-tree.ServeBackground(ctx)

Services that miss the shutdown timeout are listed by UnstoppedServiceReport.
*/
package supervisor
