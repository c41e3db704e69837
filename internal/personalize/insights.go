// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"sort"
	"time"

	"github.com/tomtom215/paperlens/internal/models"
)

const (
	maxPrimaryAreas = 5
	maxPeakHours    = 3

	// defaultCollaborationTendency is reported until collaboration signals exist.
	defaultCollaborationTendency = 0.5
)

// RecomputeInsights derives Insights from the current behavior. It is pure:
// the same behavior and location always produce identical output, and empty
// behavior yields zero values. loc selects the hour-of-day buckets for peak
// hours; nil means UTC.
func RecomputeInsights(b models.UserBehavior, loc *time.Location) models.Insights {
	if loc == nil {
		loc = time.UTC
	}

	in := models.Insights{
		PrimaryResearchAreas:  []string{},
		ExpertiseScores:       map[string]float64{},
		ReadingPatterns:       models.ReadingPatterns{PeakHours: []int{}},
		CollaborationTendency: defaultCollaborationTendency,
	}

	type tally struct {
		domain string
		count  int
	}
	tallies := make([]tally, 0, len(b.DomainInteractions))
	total := 0
	for domain, t := range b.DomainInteractions {
		if t.Count <= 0 {
			continue
		}
		tallies = append(tallies, tally{domain: domain, count: t.Count})
		total += t.Count
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].count != tallies[j].count {
			return tallies[i].count > tallies[j].count
		}
		return tallies[i].domain < tallies[j].domain
	})

	for i, t := range tallies {
		if i < maxPrimaryAreas {
			in.PrimaryResearchAreas = append(in.PrimaryResearchAreas, t.domain)
		}
		in.ExpertiseScores[t.domain] = float64(t.count) / float64(total)
	}
	if total > 0 {
		in.ExplorationTendency = float64(len(tallies)) / float64(total)
	}

	in.ReadingPatterns = readingPatterns(b.PaperViews, loc)
	return in
}

func readingPatterns(views []models.PaperView, loc *time.Location) models.ReadingPatterns {
	rp := models.ReadingPatterns{PeakHours: []int{}}
	if len(views) == 0 {
		return rp
	}

	var hours [24]int
	var durationSum float64
	for _, v := range views {
		if !v.Timestamp.IsZero() {
			hours[v.Timestamp.In(loc).Hour()]++
		}
		durationSum += v.Duration
	}
	rp.AverageSessionDuration = durationSum / float64(len(views))

	order := make([]int, 0, 24)
	for h, n := range hours {
		if n > 0 {
			order = append(order, h)
		}
	}
	// Stable on hour order, so equal counts keep the earlier hour first.
	sort.SliceStable(order, func(i, j int) bool {
		return hours[order[i]] > hours[order[j]]
	})
	if len(order) > maxPeakHours {
		order = order[:maxPeakHours]
	}
	rp.PeakHours = order
	return rp
}
