// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/paperlens/internal/validation"
)

// Request bodies for the explicit behavior trackers. Domains tag the
// interaction for the domain tally.
type (
	PaperViewRequest struct {
		PaperID   string    `json:"paper_id" validate:"required,max=256"`
		Timestamp time.Time `json:"timestamp"`
		Duration  float64   `json:"duration" validate:"gte=0"`
		Domains   []string  `json:"domains" validate:"max=32,dive,required,max=128"`
	}

	BookmarkRequest struct {
		PaperID   string    `json:"paper_id" validate:"required,max=256"`
		Timestamp time.Time `json:"timestamp"`
		Tags      []string  `json:"tags" validate:"max=64,dive,max=128"`
		Domains   []string  `json:"domains" validate:"max=32,dive,required,max=128"`
	}

	LikeRequest struct {
		PaperID   string    `json:"paper_id" validate:"required,max=256"`
		Timestamp time.Time `json:"timestamp"`
		Domains   []string  `json:"domains" validate:"max=32,dive,required,max=128"`
	}

	DeepDiveRequest struct {
		PaperID    string    `json:"paper_id" validate:"required,max=256"`
		Timestamp  time.Time `json:"timestamp"`
		Completion float64   `json:"completion" validate:"gte=0,lte=1"`
		Domains    []string  `json:"domains" validate:"max=32,dive,required,max=128"`
	}

	DomainRequest struct {
		Domain string `json:"domain" validate:"required,max=128"`
	}

	RecordRecommendationsRequest struct {
		Shown        []string `json:"shown" validate:"max=500"`
		Interactions []string `json:"interactions" validate:"max=500"`
	}

	similarQuery struct {
		Limit int `json:"limit" validate:"gte=1,lte=100"`
	}
)

const defaultSimilarLimit = 10

var errEmptyBody = errors.New("request body is empty")

// decodeBody reads a JSON body of at most h.maxBodyBytes into dst.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// decodeValid decodes and validates a request body, writing the error
// response itself. It reports whether the handler may continue.
func (h *Handler) decodeValid(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := h.decodeBody(w, r, dst); err != nil {
		rw.BadRequest(err.Error())
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.Validation(verr)
		return false
	}
	return true
}

func userIDParam(r *http.Request) string {
	return chi.URLParam(r, "userID")
}

// intQuery parses a query parameter, returning def when absent.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
