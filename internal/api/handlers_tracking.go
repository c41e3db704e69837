// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"net/http"

	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/validation"
)

// TrackSearch handles POST /users/{userID}/searches.
func (h *Handler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var entry models.SearchHistoryEntry
	if !h.decodeValid(rw, w, r, &entry) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackSearch(r.Context(), userID, entry)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackActivity handles POST /users/{userID}/activities.
func (h *Handler) TrackActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var entry models.ActivityEntry
	if !h.decodeValid(rw, w, r, &entry) {
		return
	}
	if verr := validation.ValidateVar("type", string(entry.Type), "activity_type"); verr != nil {
		rw.Validation(verr)
		return
	}
	userID := userIDParam(r)
	h.engine.TrackActivity(r.Context(), userID, entry)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackPaperView handles POST /users/{userID}/views.
func (h *Handler) TrackPaperView(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req PaperViewRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackPaperView(r.Context(), userID, models.PaperView{
		PaperID:   req.PaperID,
		Timestamp: req.Timestamp,
		Duration:  req.Duration,
	}, req.Domains...)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackBookmark handles POST /users/{userID}/bookmarks.
func (h *Handler) TrackBookmark(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req BookmarkRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackBookmark(r.Context(), userID, models.Bookmark{
		PaperID:   req.PaperID,
		Timestamp: req.Timestamp,
		Tags:      req.Tags,
	}, req.Domains...)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackLike handles POST /users/{userID}/likes.
func (h *Handler) TrackLike(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req LikeRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackLike(r.Context(), userID, models.Like{PaperID: req.PaperID, Timestamp: req.Timestamp}, req.Domains...)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackDeepDive handles POST /users/{userID}/deep-dives.
func (h *Handler) TrackDeepDive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req DeepDiveRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackDeepDive(r.Context(), userID, models.DeepDive{
		PaperID:    req.PaperID,
		Timestamp:  req.Timestamp,
		Completion: req.Completion,
	}, req.Domains...)
	rw.Accepted(h.refreshStatus(userID))
}

// TrackDomain handles POST /users/{userID}/domains.
func (h *Handler) TrackDomain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req DomainRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	userID := userIDParam(r)
	h.engine.TrackDomainInteraction(r.Context(), userID, req.Domain)
	rw.Accepted(h.refreshStatus(userID))
}
