// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/tomtom215/paperlens/internal/models"
)

const (
	contextRecentQueries = 10
	contextFrequentTerms = 10
	contextRecentPapers  = 20
	minTermLength        = 4
)

// stopWords are dropped from frequent search terms.
var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "among": {}, "analysis": {}, "based": {},
	"between": {}, "does": {}, "during": {}, "effect": {}, "effects": {}, "from": {},
	"have": {}, "into": {}, "more": {}, "most": {}, "only": {}, "other": {},
	"over": {}, "paper": {}, "papers": {}, "such": {}, "than": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "under": {}, "using": {}, "very": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"with": {}, "within": {}, "without": {}, "would": {},
}

// BuildContext summarizes userID's history and profile into the context sent
// with a refresh request. Signals disabled by the weekly mix include flags
// are left out.
func (e *Engine) BuildContext(ctx context.Context, userID string) (*models.RecommendationContext, error) {
	p, err := e.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.buildContext(p), nil
}

func (e *Engine) buildContext(p *models.UserProfile) *models.RecommendationContext {
	userID := p.UserID
	mix := e.WeeklyMix()

	rc := &models.RecommendationContext{
		UserID:           userID,
		ActivityPatterns: activityPatterns(e.ActivityHistory(userID), mix),
		DerivedDomains:   derivedDomains(p),
		Engagement:       engagement(p),
		Preferences:      p.Preferences,
		WeeklyMix:        mix.Normalized(),
		GeneratedAt:      e.clock.Now(),
	}
	if mix.IncludeSearchHistory {
		sp := searchPatterns(e.SearchHistory(userID))
		rc.SearchPatterns = &sp
	}
	return rc
}

func searchPatterns(history []models.SearchHistoryEntry) models.SearchPatterns {
	sp := models.SearchPatterns{
		TotalSearches: len(history),
		RecentQueries: []string{},
		BySource:      map[models.SearchSource]int{},
	}

	termCounts := map[string]int{}
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		sp.BySource[h.Source.Normalize()]++
		if q := strings.TrimSpace(h.Query); q != "" && len(sp.RecentQueries) < contextRecentQueries {
			sp.RecentQueries = append(sp.RecentQueries, q)
		}
		for _, term := range tokenize(h.Query) {
			termCounts[term]++
		}
	}
	sp.FrequentTerms = topTerms(termCounts, contextFrequentTerms)
	return sp
}

func activityPatterns(history []models.ActivityEntry, mix models.WeeklyMixConfig) models.ActivityPatterns {
	ap := models.ActivityPatterns{
		ByType:         map[models.ActivityType]int{},
		RecentPaperIDs: []string{},
		BySource:       map[models.SearchSource]int{},
	}

	seen := map[string]bool{}
	for i := len(history) - 1; i >= 0; i-- {
		a := history[i]
		if !mix.IncludesActivity(a.Type) {
			continue
		}
		ap.TotalActivities++
		ap.ByType[a.Type]++
		ap.BySource[a.Source.Normalize()]++
		if a.PMID != "" && !seen[a.PMID] && len(ap.RecentPaperIDs) < contextRecentPapers {
			seen[a.PMID] = true
			ap.RecentPaperIDs = append(ap.RecentPaperIDs, a.PMID)
		}
	}
	return ap
}

// derivedDomains lists insight areas first, then explicit preferences.
func derivedDomains(p *models.UserProfile) []string {
	out := make([]string, 0, len(p.Insights.PrimaryResearchAreas)+len(p.Preferences.PreferredDomains))
	seen := map[string]bool{}
	for _, list := range [][]string{p.Insights.PrimaryResearchAreas, p.Preferences.PreferredDomains} {
		for _, d := range list {
			if d != "" && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

func engagement(p *models.UserProfile) models.EngagementMetrics {
	b := p.Behavior
	m := models.EngagementMetrics{
		PaperViews:          len(b.PaperViews),
		Bookmarks:           len(b.Bookmarks),
		Likes:               len(b.Likes),
		DeepDives:           len(b.DeepDives),
		AverageViewDuration: p.Insights.ReadingPatterns.AverageSessionDuration,
		ExplorationTendency: p.Insights.ExplorationTendency,
	}
	if len(b.DeepDives) > 0 {
		var sum float64
		for _, d := range b.DeepDives {
			sum += d.Completion
		}
		m.AverageDeepDiveCompletion = sum / float64(len(b.DeepDives))
	}
	return m
}

func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len([]rune(f)) < minTermLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func topTerms(counts map[string]int, n int) []string {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
