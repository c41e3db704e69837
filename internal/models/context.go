// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import "time"

// SearchPatterns summarizes a user's recent searches.
type SearchPatterns struct {
	TotalSearches int                  `json:"total_searches"`
	RecentQueries []string             `json:"recent_queries"`
	FrequentTerms []string             `json:"frequent_terms"`
	BySource      map[SearchSource]int `json:"by_source"`
}

// ActivityPatterns summarizes a user's recent activity.
type ActivityPatterns struct {
	TotalActivities int                  `json:"total_activities"`
	ByType          map[ActivityType]int `json:"by_type"`
	RecentPaperIDs  []string             `json:"recent_paper_ids"`
	BySource        map[SearchSource]int `json:"by_source"`
}

// EngagementMetrics are aggregate counts over the behavior log.
type EngagementMetrics struct {
	PaperViews                int     `json:"paper_views"`
	Bookmarks                 int     `json:"bookmarks"`
	Likes                     int     `json:"likes"`
	DeepDives                 int     `json:"deep_dives"`
	AverageViewDuration       float64 `json:"average_view_duration"`
	AverageDeepDiveCompletion float64 `json:"average_deep_dive_completion"`
	ExplorationTendency       float64 `json:"exploration_tendency"`
}

// RecommendationContext is attached to a refresh request so the backend can
// regenerate recommendations for the user.
type RecommendationContext struct {
	UserID           string            `json:"user_id"`
	SearchPatterns   *SearchPatterns   `json:"search_patterns,omitempty"`
	ActivityPatterns ActivityPatterns  `json:"activity_patterns"`
	DerivedDomains   []string          `json:"derived_domains"`
	Engagement       EngagementMetrics `json:"engagement"`
	Preferences      UserPreferences   `json:"preferences"`
	WeeklyMix        WeeklyMixConfig   `json:"weekly_mix"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
