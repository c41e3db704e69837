// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a chi router.
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg))
	r.Use(AccessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg))
		r.Use(PrometheusMetrics)

		r.Get("/users", h.ListUsers)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(validateUserID)

			r.Delete("/", h.EraseUser)
			r.Get("/profile", h.GetProfile)
			r.Patch("/preferences", h.UpdatePreferences)
			r.Get("/history", h.GetHistory)

			r.Post("/searches", h.TrackSearch)
			r.Post("/activities", h.TrackActivity)
			r.Post("/views", h.TrackPaperView)
			r.Post("/bookmarks", h.TrackBookmark)
			r.Post("/likes", h.TrackLike)
			r.Post("/deep-dives", h.TrackDeepDive)
			r.Post("/domains", h.TrackDomain)
			r.Post("/recommendations", h.RecordRecommendations)

			r.Get("/similar", h.SimilarUsers)
			r.Get("/context", h.RecommendationContext)
			r.Get("/refresh", h.GetRefreshStatus)
			r.Post("/refresh", h.ForceRefresh)
			r.Post("/sync", h.SyncHistory)
		})

		r.Get("/weekly-mix", h.GetWeeklyMix)
		r.Put("/weekly-mix", h.UpdateWeeklyMix)
		r.Get("/schedule/next-anchor", h.GetNextAnchor)
	})

	return r
}
