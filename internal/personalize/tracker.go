// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/models"
)

// Activity context keys folded into behavior.
const (
	ctxDuration        = "duration"
	ctxDurationSeconds = "duration_seconds"
	ctxTags            = "tags"
	ctxCompletion      = "completion"
	ctxDomain          = "domain"
	ctxDomains         = "domains"
)

// TrackSearch appends entry to userID's search log and folds it into the
// profile. It then refreshes the user if stale and syncs recent history to
// the backend, subject to the sync limiter. Unknown users are created.
func (e *Engine) TrackSearch(ctx context.Context, userID string, entry models.SearchHistoryEntry) {
	if userID == "" {
		e.logger.Warn().Msg("Dropping search event without user id")
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.clock.Now()
	}
	entry.Source = entry.Source.Normalize()
	if entry.ClickedPapers == nil {
		entry.ClickedPapers = []string{}
	}

	e.withUser(ctx, userID, func(p *models.UserProfile) bool {
		e.searchLog(userID).Append(entry)
		p.Behavior.Searches = appendBounded(p.Behavior.Searches, models.SearchEvent{
			Query:          entry.Query,
			Timestamp:      entry.Timestamp,
			ClickedResults: append([]string{}, entry.ClickedPapers...),
		}, e.cfg.MaxBehaviorEvents)
		return true
	})
	metrics.EventsTracked.WithLabelValues("search").Inc()

	e.afterTrack(ctx, userID, true)
}

// TrackActivity appends entry to userID's activity log and folds it into
// the profile, with the same side effects as TrackSearch.
func (e *Engine) TrackActivity(ctx context.Context, userID string, entry models.ActivityEntry) {
	if userID == "" {
		e.logger.Warn().Msg("Dropping activity event without user id")
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.clock.Now()
	}
	entry.Source = entry.Source.Normalize()

	e.withUser(ctx, userID, func(p *models.UserProfile) bool {
		e.activityLog(userID).Append(entry)
		e.foldActivity(&p.Behavior, entry)
		return true
	})
	metrics.EventsTracked.WithLabelValues("activity_" + string(entry.Type)).Inc()

	e.afterTrack(ctx, userID, true)
}

// TrackPaperView records a view and tallies domains.
func (e *Engine) TrackPaperView(ctx context.Context, userID string, view models.PaperView, domains ...string) {
	e.trackBehavior(ctx, userID, "paper_view", func(b *models.UserBehavior, now time.Time) {
		view.Timestamp = orNow(view.Timestamp, now)
		if view.Duration < 0 {
			view.Duration = 0
		}
		b.PaperViews = appendBounded(b.PaperViews, view, e.cfg.MaxBehaviorEvents)
		tallyDomains(b, domains, view.Timestamp)
	})
}

// TrackBookmark records a bookmark and tallies domains.
func (e *Engine) TrackBookmark(ctx context.Context, userID string, bm models.Bookmark, domains ...string) {
	e.trackBehavior(ctx, userID, "bookmark", func(b *models.UserBehavior, now time.Time) {
		bm.Timestamp = orNow(bm.Timestamp, now)
		bm.Tags = nonNilStrings(bm.Tags)
		b.Bookmarks = appendBounded(b.Bookmarks, bm, e.cfg.MaxBehaviorEvents)
		tallyDomains(b, domains, bm.Timestamp)
	})
}

// TrackLike records a like and tallies domains.
func (e *Engine) TrackLike(ctx context.Context, userID string, like models.Like, domains ...string) {
	e.trackBehavior(ctx, userID, "like", func(b *models.UserBehavior, now time.Time) {
		like.Timestamp = orNow(like.Timestamp, now)
		b.Likes = appendBounded(b.Likes, like, e.cfg.MaxBehaviorEvents)
		tallyDomains(b, domains, like.Timestamp)
	})
}

// TrackDeepDive records a deep dive with completion clamped to [0,1].
func (e *Engine) TrackDeepDive(ctx context.Context, userID string, dd models.DeepDive, domains ...string) {
	e.trackBehavior(ctx, userID, "deep_dive", func(b *models.UserBehavior, now time.Time) {
		dd.Timestamp = orNow(dd.Timestamp, now)
		dd.Completion = clamp01(dd.Completion)
		b.DeepDives = appendBounded(b.DeepDives, dd, e.cfg.MaxBehaviorEvents)
		tallyDomains(b, domains, dd.Timestamp)
	})
}

// TrackDomainInteraction bumps the tally of a single domain.
func (e *Engine) TrackDomainInteraction(ctx context.Context, userID, domain string) {
	e.trackBehavior(ctx, userID, "domain", func(b *models.UserBehavior, now time.Time) {
		tallyDomains(b, []string{domain}, now)
	})
}

// trackBehavior applies an explicit behavior event. These events are not
// part of the synced search/activity history.
func (e *Engine) trackBehavior(ctx context.Context, userID, kind string, fold func(b *models.UserBehavior, now time.Time)) {
	if userID == "" {
		e.logger.Warn().Str("kind", kind).Msg("Dropping behavior event without user id")
		return
	}
	now := e.clock.Now()
	e.withUser(ctx, userID, func(p *models.UserProfile) bool {
		fold(&p.Behavior, now)
		return true
	})
	metrics.EventsTracked.WithLabelValues(kind).Inc()

	e.afterTrack(ctx, userID, false)
}

// withUser mutates the profile and persists the automation blob while the
// user lock is held, so log appends and profile updates land together.
func (e *Engine) withUser(ctx context.Context, userID string, fn func(p *models.UserProfile) bool) {
	defer e.lockUser(userID)()

	e.mutateLocked(ctx, userID, "", fn)
	e.persistState(ctx)
}

func (e *Engine) afterTrack(ctx context.Context, userID string, syncHistory bool) {
	e.publish(ctx, models.EventProfileUpdated, userID, "behavior")
	if e.NeedsUpdate(userID) {
		e.forceUpdate(ctx, userID, TriggerEvent)
	}
	if syncHistory {
		e.SyncSearchHistoryToBackend(ctx, userID)
	}
}

func (e *Engine) searchLog(userID string) *BoundedLog[models.SearchHistoryEntry] {
	e.mu.Lock()
	defer e.mu.Unlock()
	log, ok := e.searches[userID]
	if !ok {
		log = NewBoundedLog[models.SearchHistoryEntry](e.cfg.MaxSearchHistory)
		e.searches[userID] = log
	}
	return log
}

func (e *Engine) activityLog(userID string) *BoundedLog[models.ActivityEntry] {
	e.mu.Lock()
	defer e.mu.Unlock()
	log, ok := e.activities[userID]
	if !ok {
		log = NewBoundedLog[models.ActivityEntry](e.cfg.MaxActivityHistory)
		e.activities[userID] = log
	}
	return log
}

// SearchHistory returns userID's retained searches, oldest first.
func (e *Engine) SearchHistory(userID string) []models.SearchHistoryEntry {
	e.mu.RLock()
	log := e.searches[userID]
	e.mu.RUnlock()
	if log == nil {
		return []models.SearchHistoryEntry{}
	}
	return log.Items()
}

// ActivityHistory returns userID's retained activities, oldest first.
func (e *Engine) ActivityHistory(userID string) []models.ActivityEntry {
	e.mu.RLock()
	log := e.activities[userID]
	e.mu.RUnlock()
	if log == nil {
		return []models.ActivityEntry{}
	}
	return log.Items()
}

// foldActivity maps an activity onto the behavior sequences.
func (e *Engine) foldActivity(b *models.UserBehavior, a models.ActivityEntry) {
	limit := e.cfg.MaxBehaviorEvents
	switch a.Type {
	case models.ActivityPaperView:
		d, ok := numberFrom(a.Context[ctxDuration])
		if !ok {
			d, _ = numberFrom(a.Context[ctxDurationSeconds])
		}
		if d < 0 {
			d = 0
		}
		b.PaperViews = appendBounded(b.PaperViews, models.PaperView{
			PaperID:   a.PMID,
			Timestamp: a.Timestamp,
			Duration:  d,
		}, limit)
	case models.ActivityBookmark:
		b.Bookmarks = appendBounded(b.Bookmarks, models.Bookmark{
			PaperID:   a.PMID,
			Timestamp: a.Timestamp,
			Tags:      stringsFrom(a.Context[ctxTags]),
		}, limit)
	case models.ActivityDeepDive:
		c, _ := numberFrom(a.Context[ctxCompletion])
		b.DeepDives = appendBounded(b.DeepDives, models.DeepDive{
			PaperID:    a.PMID,
			Timestamp:  a.Timestamp,
			Completion: clamp01(c),
		}, limit)
	}

	var domains []string
	if d, ok := a.Context[ctxDomain].(string); ok {
		domains = append(domains, d)
	}
	domains = append(domains, stringsFrom(a.Context[ctxDomains])...)
	tallyDomains(b, domains, a.Timestamp)
}

// tallyDomains counts each distinct, non-blank domain once per event.
func tallyDomains(b *models.UserBehavior, domains []string, at time.Time) {
	if len(domains) == 0 {
		return
	}
	if b.DomainInteractions == nil {
		b.DomainInteractions = map[string]models.DomainTally{}
	}
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		t := b.DomainInteractions[d]
		t.Count++
		if at.After(t.LastInteraction) {
			t.LastInteraction = at
		}
		b.DomainInteractions[d] = t
	}
}

func orNow(ts, now time.Time) time.Time {
	if ts.IsZero() {
		return now
	}
	return ts
}

// numberFrom accepts the numeric shapes a decoded JSON context can hold.
func numberFrom(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringsFrom(v any) []string {
	switch s := v.(type) {
	case []string:
		return nonNilStrings(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if s == "" {
			return []string{}
		}
		return []string{s}
	default:
		return []string{}
	}
}
