// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import "time"

// ReadingPatterns summarizes when and how long a user reads.
type ReadingPatterns struct {
	PeakHours              []int   `json:"peak_hours"`
	AverageSessionDuration float64 `json:"average_session_duration"`
}

// Insights are derived from UserBehavior and are never edited directly.
type Insights struct {
	PrimaryResearchAreas  []string           `json:"primary_research_areas"`
	ExpertiseScores       map[string]float64 `json:"expertise_scores"`
	ReadingPatterns       ReadingPatterns    `json:"reading_patterns"`
	ExplorationTendency   float64            `json:"exploration_tendency"`
	CollaborationTendency float64            `json:"collaboration_tendency"`
}

// Clone returns a deep copy of in.
func (in Insights) Clone() Insights {
	out := in
	out.PrimaryResearchAreas = cloneStrings(in.PrimaryResearchAreas)
	out.ReadingPatterns.PeakHours = append([]int(nil), in.ReadingPatterns.PeakHours...)
	out.ExpertiseScores = make(map[string]float64, len(in.ExpertiseScores))
	for k, v := range in.ExpertiseScores {
		out.ExpertiseScores[k] = v
	}
	return out
}

// RecommendationRecord is one entry of a profile's recommendation history.
type RecommendationRecord struct {
	Timestamp         time.Time `json:"timestamp"`
	RecommendationIDs []string  `json:"recommendation_ids"`
	InteractionIDs    []string  `json:"interaction_ids"`
}

// UserProfile is the complete per-user record persisted under
// "user_profile_<user_id>".
type UserProfile struct {
	UserID                string                 `json:"user_id"`
	Email                 string                 `json:"email,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	LastActive            time.Time              `json:"last_active"`
	Preferences           UserPreferences        `json:"preferences"`
	Behavior              UserBehavior           `json:"behavior"`
	Insights              Insights               `json:"insights"`
	RecommendationHistory []RecommendationRecord `json:"recommendation_history"`
}

// Clone returns a deep copy of p safe to hand to callers.
func (p *UserProfile) Clone() *UserProfile {
	out := *p
	out.Preferences = p.Preferences.Clone()
	out.Behavior = p.Behavior.Clone()
	out.Insights = p.Insights.Clone()
	out.RecommendationHistory = make([]RecommendationRecord, len(p.RecommendationHistory))
	for i, r := range p.RecommendationHistory {
		r.RecommendationIDs = cloneStrings(r.RecommendationIDs)
		r.InteractionIDs = cloneStrings(r.InteractionIDs)
		out.RecommendationHistory[i] = r
	}
	return &out
}
