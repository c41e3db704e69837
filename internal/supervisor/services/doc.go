// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package services adapts PaperLens components to suture.Service.
//
//   - HTTPServerService: ListenAndServe/Shutdown with a bounded graceful stop.
//   - BatchService: the staleness sweep and the weekly anchor batch, each a
//     schedule.Runner over an engine batch call.
//   - EventLogService: audit logging of profile events from the event bus.
//
// Every Serve returns ctx.Err() once its context is canceled so the
// supervisor treats the stop as clean.
package services
