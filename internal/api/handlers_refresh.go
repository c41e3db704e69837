// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/validation"
)

// RefreshStatus reports a user's staleness and refresh bookkeeping.
type RefreshStatus struct {
	UserID      string     `json:"user_id"`
	NeedsUpdate bool       `json:"needs_update"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
}

// RefreshResult is the body of POST /users/{userID}/refresh.
type RefreshResult struct {
	Refreshed bool `json:"refreshed"`
	RefreshStatus
}

// SyncResult is the body of POST /users/{userID}/sync.
type SyncResult struct {
	Sent bool `json:"sent"`
	RefreshStatus
}

// NextAnchor is the body of GET /schedule/next-anchor.
type NextAnchor struct {
	Schedule   string    `json:"schedule"`
	Now        time.Time `json:"now"`
	NextAnchor time.Time `json:"next_anchor"`
}

func (h *Handler) refreshStatus(userID string) RefreshStatus {
	st := RefreshStatus{UserID: userID, NeedsUpdate: h.engine.NeedsUpdate(userID)}
	if t, ok := h.engine.LastUpdate(userID); ok {
		st.LastUpdate = &t
	}
	if t, ok := h.engine.LastSync(userID); ok {
		st.LastSync = &t
	}
	return st
}

// GetRefreshStatus handles GET /users/{userID}/refresh.
func (h *Handler) GetRefreshStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.refreshStatus(userIDParam(r)))
}

// ForceRefresh handles POST /users/{userID}/refresh. A failed backend call
// is reported as refreshed=false rather than an HTTP error; the user stays
// stale and is retried by the next event or sweep.
func (h *Handler) ForceRefresh(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	refreshed := h.engine.ForceUpdate(r.Context(), userID)
	NewResponseWriter(w, r).Success(RefreshResult{Refreshed: refreshed, RefreshStatus: h.refreshStatus(userID)})
}

// SyncHistory handles POST /users/{userID}/sync. Sent is false for unknown
// users and when the upload was suppressed or failed.
func (h *Handler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	sent := h.engine.SyncSearchHistoryToBackend(r.Context(), userID)
	NewResponseWriter(w, r).Success(SyncResult{Sent: sent, RefreshStatus: h.refreshStatus(userID)})
}

// GetWeeklyMix handles GET /weekly-mix.
func (h *Handler) GetWeeklyMix(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.WeeklyMix())
}

// UpdateWeeklyMix handles PUT /weekly-mix. The whole configuration is
// replaced and persisted before the response is written.
func (h *Handler) UpdateWeeklyMix(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var cfg models.WeeklyMixConfig
	if !h.decodeValid(rw, w, r, &cfg) {
		return
	}
	updated, err := h.engine.UpdateWeeklyMix(r.Context(), cfg)
	switch {
	case errors.Is(err, personalize.ErrInvalidWeeklyMix):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
	case err != nil:
		rw.InternalError(err)
	default:
		rw.Success(updated)
	}
}

// GetNextAnchor handles GET /schedule/next-anchor.
func (h *Handler) GetNextAnchor(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.anchor == nil {
		rw.NotFound("weekly anchor is not scheduled")
		return
	}
	now := h.clock.Now()
	next := h.anchor.Next(now)
	if next.IsZero() {
		rw.NotFound("weekly anchor has no further activations")
		return
	}
	rw.Success(NextAnchor{Schedule: fmt.Sprint(h.anchor), Now: now, NextAnchor: next})
}

// validateUserID rejects malformed {userID} path parameters.
func validateUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := userIDParam(r)
		if verr := validation.ValidateVar("user_id", userID, "userid"); verr != nil {
			NewResponseWriter(w, r).Validation(verr)
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.ContextWithUserID(r.Context(), userID)))
	})
}
