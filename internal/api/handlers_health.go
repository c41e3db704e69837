// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	KnownUsers    int               `json:"known_users"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// HealthLive handles GET /health/live. It never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        "ok",
		UptimeSeconds: h.clock.Now().Sub(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /health/ready, running every readiness check
// with a short timeout. Any failure answers 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := HealthStatus{
		Status:        "ready",
		UptimeSeconds: h.clock.Now().Sub(h.startTime).Seconds(),
		KnownUsers:    len(h.engine.KnownUsers()),
		Checks:        make(map[string]string, len(names)),
	}
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status.Checks[name] = err.Error()
			healthy = false
			continue
		}
		status.Checks[name] = "ok"
	}

	rw := NewResponseWriter(w, r)
	if !healthy {
		status.Status = "not_ready"
		rw.ServiceUnavailable("dependency check failed", status)
		return
	}
	rw.Success(status)
}
