// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

/*
Package backend is the HTTP client for the recommendation backend.

The engine talks to exactly two endpoints:

	GET  /recommendations/weekly/{userId}?force_refresh=true
	POST /recommendations/search-history/{userId}

The weekly refresh carries the serialized RecommendationContext in the
X-Recommendation-Context header (base64 encoded JSON). The search history
sync identifies the acting user with X-User-ID. Response bodies are only
inspected for error reporting; any non-2xx status is a failure.

HTTPClient performs the raw calls. BreakerClient wraps any Client with a
sony/gobreaker circuit breaker so a dead backend is not hammered by sweeps.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/paperlens/internal/models"
)

const (
	// HeaderRecommendationContext carries the base64 JSON context on refreshes.
	HeaderRecommendationContext = "X-Recommendation-Context"

	// HeaderUserID identifies the acting user on search history syncs.
	HeaderUserID = "X-User-ID"

	// maxErrorBodySize caps how much of an error response is kept.
	maxErrorBodySize = 4 * 1024
)

// ErrUnexpectedStatus is matched by every StatusError.
var ErrUnexpectedStatus = errors.New("backend: unexpected status")

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }

// SearchHistoryPayload is the body of a search history sync.
type SearchHistoryPayload struct {
	Searches   []models.SearchHistoryEntry `json:"searches"`
	Activities []models.ActivityEntry      `json:"activities"`
}

// Client is the contract the engine depends on.
type Client interface {
	// RefreshWeekly asks the backend to recompute the user's weekly mix.
	RefreshWeekly(ctx context.Context, userID string, rc *models.RecommendationContext) error

	// SyncSearchHistory pushes recent searches and activities for userID.
	SyncSearchHistory(ctx context.Context, userID string, payload SearchHistoryPayload) error
}

// Config configures an HTTPClient.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client. Tests use this to inject
	// an httptest server's client.
	HTTPClient *http.Client
}

// HTTPClient is the net/http implementation of Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a client for cfg.BaseURL.
func NewHTTPClient(cfg Config, logger zerolog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base url %q must be http or https", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logger.With().Str("component", "backend").Logger(),
	}, nil
}

// RefreshWeekly issues GET /recommendations/weekly/{userID}?force_refresh=true.
func (c *HTTPClient) RefreshWeekly(ctx context.Context, userID string, rc *models.RecommendationContext) error {
	header, err := EncodeContextHeader(rc)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/recommendations/weekly/" + url.PathEscape(userID) + "?force_refresh=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRecommendationContext, header)

	return c.do(req, "weekly")
}

// SyncSearchHistory issues POST /recommendations/search-history/{userID}.
func (c *HTTPClient) SyncSearchHistory(ctx context.Context, userID string, payload SearchHistoryPayload) error {
	if payload.Searches == nil {
		payload.Searches = []models.SearchHistoryEntry{}
	}
	if payload.Activities == nil {
		payload.Activities = []models.ActivityEntry{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal search history: %w", err)
	}

	endpoint := c.baseURL + "/recommendations/search-history/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, userID)

	return c.do(req, "search-history")
}

func (c *HTTPClient) do(req *http.Request, endpoint string) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s request: %w", endpoint, err)
	}
	defer func() {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}
	return nil
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}

// EncodeContextHeader serializes rc as base64 JSON for the context header.
func EncodeContextHeader(rc *models.RecommendationContext) (string, error) {
	if rc == nil {
		return "", errors.New("backend: nil recommendation context")
	}
	raw, err := json.Marshal(rc)
	if err != nil {
		return "", fmt.Errorf("marshal recommendation context: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeContextHeader reverses EncodeContextHeader.
func DecodeContextHeader(value string) (*models.RecommendationContext, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode context header: %w", err)
	}
	var rc models.RecommendationContext
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("unmarshal context header: %w", err)
	}
	return &rc, nil
}
