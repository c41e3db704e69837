// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/paperlens/internal/models"
)

// SimilarityWeights sets the contribution of each sub-score. Weights do not
// need to sum to one; the score is divided by the weights actually applied.
type SimilarityWeights struct {
	Domain       float64 `json:"domain"`
	Behavior     float64 `json:"behavior"`
	ReadingLevel float64 `json:"reading_level"`
	Novelty      float64 `json:"novelty"`
}

// DefaultSimilarityWeights returns 0.3 domain, 0.4 behavior, 0.2 reading
// level and 0.1 novelty.
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{Domain: 0.3, Behavior: 0.4, ReadingLevel: 0.2, Novelty: 0.1}
}

// SimilarUser is one FindSimilarUsers result.
type SimilarUser struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// Similarity scores two profiles in [0,1] with the default weights.
func Similarity(a, b *models.UserProfile) float64 {
	return DefaultSimilarityWeights().Score(a, b)
}

// Score computes the weighted similarity of a and b.
//
// Behavior similarity is the Jaccard index of viewed paper ids only. A
// Jaccard sub-score is skipped when both sets are empty, so two profiles
// without any shared signal type are compared on what they do have.
func (w SimilarityWeights) Score(a, b *models.UserProfile) float64 {
	if a == nil || b == nil {
		return 0
	}

	var sum, applied float64
	add := func(weight, score float64) {
		if weight <= 0 {
			return
		}
		sum += weight * score
		applied += weight
	}

	if s, ok := jaccard(toSet(a.Preferences.PreferredDomains), toSet(b.Preferences.PreferredDomains)); ok {
		add(w.Domain, s)
	}
	if s, ok := jaccard(a.Behavior.ViewedPaperIDs(), b.Behavior.ViewedPaperIDs()); ok {
		add(w.Behavior, s)
	}
	if ia, ib := a.Preferences.ReadingLevel.Index(), b.Preferences.ReadingLevel.Index(); ia >= 0 && ib >= 0 {
		add(w.ReadingLevel, 1-math.Abs(float64(ia-ib))/3)
	}
	add(w.Novelty, 1-math.Abs(clamp01(a.Preferences.NoveltyPreference)-clamp01(b.Preferences.NoveltyPreference)))

	if applied == 0 {
		return 0
	}
	return clamp01(sum / applied)
}

// FindSimilarUsers ranks every other known profile against userID and returns
// the best limit matches, highest score first with ties ordered by user id.
// An unknown user or a non-positive limit yields an empty result.
func (e *Engine) FindSimilarUsers(ctx context.Context, userID string, limit int) []SimilarUser {
	if limit <= 0 || userID == "" {
		return []SimilarUser{}
	}

	e.mu.RLock()
	target := e.profiles[userID]
	others := make([]*models.UserProfile, 0, len(e.profiles))
	for id, p := range e.profiles {
		if id != userID {
			others = append(others, p)
		}
	}
	e.mu.RUnlock()

	if target == nil {
		e.logger.Debug().Str("user_id", userID).Msg("Similarity requested for unknown user")
		return []SimilarUser{}
	}

	results := make([]SimilarUser, 0, len(others))
	for _, p := range others {
		if ctx.Err() != nil {
			break
		}
		results = append(results, SimilarUser{UserID: p.UserID, Score: e.weights.Score(target, p)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UserID < results[j].UserID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// jaccard returns |a∩b| / |a∪b| and false when both sets are empty.
func jaccard(a, b map[string]struct{}) (float64, bool) {
	if len(a) == 0 && len(b) == 0 {
		return 0, false
	}
	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union), true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
