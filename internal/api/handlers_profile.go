// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/validation"
)

// UserList is the body of GET /users.
type UserList struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// History is the body of GET /users/{userID}/history.
type History struct {
	Searches   []models.SearchHistoryEntry `json:"searches"`
	Activities []models.ActivityEntry      `json:"activities"`
}

// EraseResult is the body of DELETE /users/{userID}.
type EraseResult struct {
	UserID string `json:"user_id"`
	Erased bool   `json:"erased"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.engine.KnownUsers()
	NewResponseWriter(w, r).Success(UserList{Users: users, Count: len(users)})
}

// GetProfile handles GET /users/{userID}/profile. The profile is created
// with default preferences on first access; ?email= fills an empty email.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := userIDParam(r)

	email := r.URL.Query().Get("email")
	if email != "" {
		if verr := validation.ValidateVar("email", email, "email"); verr != nil {
			rw.Validation(verr)
			return
		}
	}

	profile, err := h.engine.GetOrCreateProfile(r.Context(), userID, email)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(profile)
}

// UpdatePreferences handles PATCH /users/{userID}/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var patch models.PreferencesPatch
	if err := h.decodeBody(w, r, &patch); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if patch.IsEmpty() {
		rw.BadRequest("patch contains no fields")
		return
	}

	profile, err := h.engine.UpdatePreferences(r.Context(), userIDParam(r), patch)
	switch {
	case errors.Is(err, personalize.ErrInvalidPreferences):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
	case err != nil:
		rw.InternalError(err)
	default:
		rw.Success(profile)
	}
}

// EraseUser handles DELETE /users/{userID}. Erasing an unknown user is not
// an error; Erased reports whether anything was removed.
func (h *Handler) EraseUser(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	erased := h.engine.EraseUser(r.Context(), userID)
	NewResponseWriter(w, r).Success(EraseResult{UserID: userID, Erased: erased})
}

// GetHistory handles GET /users/{userID}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	NewResponseWriter(w, r).Success(History{
		Searches:   h.engine.SearchHistory(userID),
		Activities: h.engine.ActivityHistory(userID),
	})
}

// RecordRecommendations handles POST /users/{userID}/recommendations.
func (h *Handler) RecordRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req RecordRecommendationsRequest
	if !h.decodeValid(rw, w, r, &req) {
		return
	}
	profile, err := h.engine.RecordRecommendations(r.Context(), userIDParam(r), req.Shown, req.Interactions)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(profile.RecommendationHistory)
}

// SimilarUsers handles GET /users/{userID}/similar?limit=N (default 10, max 100).
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit, err := intQuery(r, "limit", defaultSimilarLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&similarQuery{Limit: limit}); verr != nil {
		rw.Validation(verr)
		return
	}
	rw.Success(h.engine.FindSimilarUsers(r.Context(), userIDParam(r), limit))
}

// RecommendationContext handles GET /users/{userID}/context.
func (h *Handler) RecommendationContext(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rc, err := h.engine.BuildContext(r.Context(), userIDParam(r))
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(rc)
}
