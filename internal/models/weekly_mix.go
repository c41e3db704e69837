// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

// WeeklyMixConfig is the process-wide tuning of the weekly recommendation mix.
type WeeklyMixConfig struct {
	Cadence                   UpdateCadence `json:"cadence" koanf:"cadence" validate:"omitempty,oneof=daily weekly bi-weekly"`
	IncludeSearchHistory      bool          `json:"include_search_history" koanf:"include_search_history"`
	IncludeNetworkActivity    bool          `json:"include_network_activity" koanf:"include_network_activity"`
	IncludeCollectionActivity bool          `json:"include_collection_activity" koanf:"include_collection_activity"`
	IncludeSemanticDiscovery  bool          `json:"include_semantic_discovery" koanf:"include_semantic_discovery"`
	MaxRecommendations        int           `json:"max_recommendations" koanf:"max_recommendations" validate:"gte=1,lte=500"`
	DiversityWeight           float64       `json:"diversity_weight" koanf:"diversity_weight" validate:"gte=0"`
	NoveltyWeight             float64       `json:"novelty_weight" koanf:"novelty_weight" validate:"gte=0"`
	PersonalizationWeight     float64       `json:"personalization_weight" koanf:"personalization_weight" validate:"gte=0"`
}

// DefaultWeeklyMixConfig returns the weekly mix configuration used when none
// is configured or persisted.
func DefaultWeeklyMixConfig() WeeklyMixConfig {
	return WeeklyMixConfig{
		Cadence:                   CadenceWeekly,
		IncludeSearchHistory:      true,
		IncludeNetworkActivity:    true,
		IncludeCollectionActivity: true,
		IncludeSemanticDiscovery:  true,
		MaxRecommendations:        20,
		DiversityWeight:           0.3,
		NoveltyWeight:             0.3,
		PersonalizationWeight:     0.4,
	}
}

// Normalized returns a copy whose three blend weights sum to 1.
// Negative weights are treated as 0; if all weights are 0 they become equal thirds.
func (c WeeklyMixConfig) Normalized() WeeklyMixConfig {
	d, n, p := nonNegative(c.DiversityWeight), nonNegative(c.NoveltyWeight), nonNegative(c.PersonalizationWeight)
	sum := d + n + p
	if sum == 0 {
		c.DiversityWeight, c.NoveltyWeight, c.PersonalizationWeight = 1.0/3, 1.0/3, 1.0/3
		return c
	}
	c.DiversityWeight, c.NoveltyWeight, c.PersonalizationWeight = d/sum, n/sum, p/sum
	return c
}

// IncludesActivity reports whether activity of type t contributes to the mix.
func (c WeeklyMixConfig) IncludesActivity(t ActivityType) bool {
	switch t {
	case ActivityNetworkNavigation:
		return c.IncludeNetworkActivity
	case ActivityCollectionAdd:
		return c.IncludeCollectionActivity
	case ActivitySemanticDiscovery:
		return c.IncludeSemanticDiscovery
	default:
		return true
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
