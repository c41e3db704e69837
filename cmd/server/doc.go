// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

/*
Package main is the entry point for the PaperLens server.

PaperLens keeps a behavioral profile for every reader of a research paper
site, turns it into a recommendation context and asks the recommendation
backend to rebuild each user's weekly mix whenever the profile goes stale.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("paperlens")
	├── DataSupervisor ("data-layer")
	│   └── Event log consumer (EVENTS_ENABLED=true)
	├── SchedulerSupervisor ("scheduler-layer")
	│   ├── Staleness sweep (hourly)
	│   └── Weekly anchor batch (Monday 06:00)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Storage: BadgerDB, Redis or in-memory profile store
 4. Backend: HTTP client behind a gobreaker circuit breaker
 5. Engine: profiles restored from storage with bounded parallelism
 6. Supervisor Tree: event log, schedulers and HTTP server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
SHUTDOWN_TIMEOUT, the scheduler finishes the user in flight and the
store is closed last.

# Example Usage

	export STORAGE_BACKEND=badger
	export STORAGE_PATH=/data/paperlens
	export BACKEND_URL=http://recommender:8000/api
	./paperlens

Local development without persistence:

	STORAGE_BACKEND=memory LOG_FORMAT=console ./paperlens
*/
package main
