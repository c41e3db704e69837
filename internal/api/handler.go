// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package api

import (
	"context"
	"time"

	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/personalize"
	"github.com/tomtom215/paperlens/internal/schedule"
)

// Engine is the personalization surface the handlers serve.
// *personalize.Engine implements it.
type Engine interface {
	TrackSearch(ctx context.Context, userID string, entry models.SearchHistoryEntry)
	TrackActivity(ctx context.Context, userID string, entry models.ActivityEntry)
	TrackPaperView(ctx context.Context, userID string, view models.PaperView, domains ...string)
	TrackBookmark(ctx context.Context, userID string, bm models.Bookmark, domains ...string)
	TrackLike(ctx context.Context, userID string, like models.Like, domains ...string)
	TrackDeepDive(ctx context.Context, userID string, dd models.DeepDive, domains ...string)
	TrackDomainInteraction(ctx context.Context, userID, domain string)

	KnownUsers() []string
	GetOrCreateProfile(ctx context.Context, userID, email string) (*models.UserProfile, error)
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdatePreferences(ctx context.Context, userID string, patch models.PreferencesPatch) (*models.UserProfile, error)
	RecordRecommendations(ctx context.Context, userID string, shown, interactions []string) (*models.UserProfile, error)
	EraseUser(ctx context.Context, userID string) bool
	SearchHistory(userID string) []models.SearchHistoryEntry
	ActivityHistory(userID string) []models.ActivityEntry

	FindSimilarUsers(ctx context.Context, userID string, limit int) []personalize.SimilarUser
	BuildContext(ctx context.Context, userID string) (*models.RecommendationContext, error)

	NeedsUpdate(userID string) bool
	LastUpdate(userID string) (time.Time, bool)
	LastSync(userID string) (time.Time, bool)
	ForceUpdate(ctx context.Context, userID string) bool
	SyncSearchHistoryToBackend(ctx context.Context, userID string) bool

	WeeklyMix() models.WeeklyMixConfig
	UpdateWeeklyMix(ctx context.Context, cfg models.WeeklyMixConfig) (models.WeeklyMixConfig, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Engine Engine

	// Anchor is the weekly batch schedule reported by /schedule/next-anchor.
	Anchor schedule.Schedule

	// Clock defaults to schedule.RealClock.
	Clock schedule.Clock

	// Checks run on /health/ready, keyed by dependency name.
	Checks map[string]ReadinessCheck

	// MaxBodyBytes caps request bodies. Default 1 MiB.
	MaxBodyBytes int64
}

// Handler serves the PaperLens HTTP API.
type Handler struct {
	engine       Engine
	anchor       schedule.Schedule
	clock        schedule.Clock
	checks       map[string]ReadinessCheck
	maxBodyBytes int64
	startTime    time.Time
}

// NewHandler creates a Handler.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		engine:       opts.Engine,
		anchor:       opts.Anchor,
		clock:        opts.Clock,
		checks:       opts.Checks,
		maxBodyBytes: opts.MaxBodyBytes,
		startTime:    opts.Clock.Now(),
	}
}
