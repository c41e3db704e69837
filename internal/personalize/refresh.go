// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/paperlens/internal/backend"
	"github.com/tomtom215/paperlens/internal/logging"
	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/schedule"
)

// Refresh triggers, used as metric labels.
const (
	TriggerEvent  = "event"
	TriggerManual = "manual"
	TriggerSweep  = "sweep"
	TriggerWeekly = "weekly"
)

// NeedsUpdate reports whether userID is stale: no successful refresh yet, or
// at least the user's cadence threshold has elapsed since the last one.
func (e *Engine) NeedsUpdate(userID string) bool {
	e.mu.RLock()
	last, ok := e.lastUpdate[userID]
	p := e.profiles[userID]
	cadence := e.weeklyMix.Cadence
	e.mu.RUnlock()

	if !ok || last.IsZero() {
		return true
	}
	if p != nil && p.Preferences.UpdateCadence.Valid() {
		cadence = p.Preferences.UpdateCadence
	}
	return e.clock.Now().Sub(last) >= cadence.Threshold()
}

// LastUpdate returns the time of userID's last successful refresh.
func (e *Engine) LastUpdate(userID string) (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ts, ok := e.lastUpdate[userID]
	return ts, ok
}

// LastSync returns the time of userID's last successful history sync.
func (e *Engine) LastSync(userID string) (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ts, ok := e.lastSync[userID]
	return ts, ok
}

// ForceUpdate asks the backend to regenerate userID's weekly mix. On success
// the user becomes fresh; on failure the user stays stale and the error is
// only logged. Concurrent calls for one user share a single request.
func (e *Engine) ForceUpdate(ctx context.Context, userID string) bool {
	return e.forceUpdate(ctx, userID, TriggerManual)
}

func (e *Engine) forceUpdate(ctx context.Context, userID, trigger string) bool {
	if userID == "" {
		return false
	}
	// Callers joining the shared refresh must not lose it when the first
	// caller goes away; the backend timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := e.refreshes.Do(userID, func() (any, error) {
		return e.refresh(shared, userID, trigger), nil
	})
	ok, _ := v.(bool)
	return ok
}

// refreshTarget returns the published profile a refresh works on and its
// generation. Manual refreshes create unknown users; event and scheduled
// refreshes never do, so a batch cannot resurrect a user erased mid-run.
func (e *Engine) refreshTarget(ctx context.Context, userID, trigger string) (*models.UserProfile, uint64) {
	if trigger == TriggerManual {
		if _, err := e.GetUserProfile(ctx, userID); err != nil {
			return nil, 0
		}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	p := e.profiles[userID]
	if p == nil {
		return nil, 0
	}
	return p, e.generations[userID]
}

func (e *Engine) refresh(ctx context.Context, userID, trigger string) bool {
	lctx := e.logger.With().Str("user_id", userID).Str("trigger", trigger)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		lctx = lctx.Str("correlation_id", cid)
	}
	logger := lctx.Logger()
	if e.backend == nil {
		logger.Debug().Msg("No backend configured, refresh skipped")
		metrics.RefreshRequests.WithLabelValues(trigger, "skipped").Inc()
		return false
	}

	p, gen := e.refreshTarget(ctx, userID, trigger)
	if p == nil {
		logger.Debug().Msg("Unknown user, refresh skipped")
		metrics.RefreshRequests.WithLabelValues(trigger, "skipped").Inc()
		return false
	}
	rc := e.buildContext(p)

	start := time.Now()
	err := e.backend.RefreshWeekly(ctx, userID, rc)
	metrics.RecordRefresh(trigger, time.Since(start), err == nil)
	if err != nil {
		if backend.IsRejected(err) {
			logger.Debug().Err(err).Msg("Refresh rejected by circuit breaker, user stays stale")
		} else {
			logger.Warn().Err(err).Msg("Recommendation refresh failed, user stays stale")
		}
		return false
	}

	if !e.stampIfCurrent(e.lastUpdate, userID, gen) {
		logger.Info().Msg("User erased during refresh, result discarded")
		return false
	}
	e.persistState(ctx)

	e.publish(ctx, models.EventRecommendationsRefreshed, userID, trigger)
	logger.Debug().Msg("Recommendations refreshed")
	return true
}

// SyncSearchHistoryToBackend uploads userID's most recent searches and
// activities. Users without a profile are skipped. It is suppressed while a
// sync for the user is in flight or the last successful one is younger than
// the configured minimum interval. It reports whether a request succeeded.
func (e *Engine) SyncSearchHistoryToBackend(ctx context.Context, userID string) bool {
	if userID == "" || e.backend == nil {
		return false
	}

	now := e.clock.Now()
	e.mu.Lock()
	gen := e.generations[userID]
	if gen == 0 {
		e.mu.Unlock()
		metrics.SyncRequests.WithLabelValues("skipped").Inc()
		return false
	}
	last, synced := e.lastSync[userID]
	if e.syncing[userID] || (synced && now.Sub(last) < e.cfg.SyncMinInterval) {
		e.mu.Unlock()
		metrics.SyncRequests.WithLabelValues("suppressed").Inc()
		return false
	}
	e.syncing[userID] = true
	searches := e.searches[userID]
	activities := e.activities[userID]
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.syncing, userID)
		e.mu.Unlock()
	}()

	payload := backend.SearchHistoryPayload{
		Searches:   []models.SearchHistoryEntry{},
		Activities: []models.ActivityEntry{},
	}
	if searches != nil {
		payload.Searches = searches.Recent(e.cfg.SyncRecentSearches)
	}
	if activities != nil {
		payload.Activities = activities.Recent(e.cfg.SyncRecentActivities)
	}

	if err := e.backend.SyncSearchHistory(ctx, userID, payload); err != nil {
		metrics.SyncRequests.WithLabelValues("failure").Inc()
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("Search history sync failed")
		return false
	}

	if !e.stampIfCurrent(e.lastSync, userID, gen) {
		e.logger.Info().Str("user_id", userID).Msg("User erased during history sync, result discarded")
		return false
	}
	e.persistState(ctx)

	metrics.SyncRequests.WithLabelValues("success").Inc()
	return true
}

// BatchResult summarizes one pass over all users.
type BatchResult struct {
	Job       string `json:"job"`
	Users     int    `json:"users"`
	Refreshed int    `json:"refreshed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// RefreshAllUsers force-refreshes every known user in first-seen order,
// pacing requests by the configured user delay. It stops early when ctx is
// cancelled.
func (e *Engine) RefreshAllUsers(ctx context.Context) BatchResult {
	return e.runBatch(ctx, TriggerWeekly, func(string) bool { return true })
}

// SweepStaleUsers refreshes only the users whose cadence has elapsed.
func (e *Engine) SweepStaleUsers(ctx context.Context) BatchResult {
	return e.runBatch(ctx, TriggerSweep, e.NeedsUpdate)
}

func (e *Engine) runBatch(ctx context.Context, job string, want func(userID string) bool) BatchResult {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	users := e.KnownUsers()
	res := BatchResult{Job: job, Users: len(users)}
	pace := newPacer(e.clock, e.cfg.UserDelay)

	for _, id := range users {
		// Erased since the snapshot.
		if e.lookup(id) == nil || !want(id) {
			res.Skipped++
			metrics.ScheduledUsers.WithLabelValues(job, "skipped").Inc()
			continue
		}
		if err := pace.wait(ctx); err != nil {
			break
		}
		if e.forceUpdate(ctx, id, job) {
			res.Refreshed++
			metrics.ScheduledUsers.WithLabelValues(job, "refreshed").Inc()
		} else {
			res.Failed++
			metrics.ScheduledUsers.WithLabelValues(job, "failed").Inc()
		}
	}
	metrics.ScheduledRuns.WithLabelValues(job).Inc()

	e.logger.Info().
		Str("job", job).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Int("users", res.Users).
		Int("refreshed", res.Refreshed).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("Batch refresh completed")
	return res
}

// pacer spaces batch requests with a token bucket evaluated on the engine
// clock, so fake clocks drive the delay in tests.
type pacer struct {
	lim   *rate.Limiter
	clock schedule.Clock
}

func newPacer(clock schedule.Clock, every time.Duration) *pacer {
	if every <= 0 {
		return &pacer{clock: clock}
	}
	return &pacer{lim: rate.NewLimiter(rate.Every(every), 1), clock: clock}
}

func (p *pacer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.lim == nil {
		return nil
	}
	now := p.clock.Now()
	r := p.lim.ReserveN(now, 1)
	d := r.DelayFrom(now)
	if d <= 0 {
		return nil
	}
	t := p.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C():
		return nil
	case <-ctx.Done():
		r.CancelAt(p.clock.Now())
		return ctx.Err()
	}
}
