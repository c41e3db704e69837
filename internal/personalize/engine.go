// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/paperlens/internal/backend"
	"github.com/tomtom215/paperlens/internal/metrics"
	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/storage"
)

const (
	// ProfileKeyPrefix prefixes every persisted profile key.
	ProfileKeyPrefix = "user_profile_"

	// AutomationKey holds the engine's own bookkeeping blob.
	AutomationKey = "weeklyMixAutomation"
)

var (
	// ErrEmptyUserID is returned by operations that need a user id.
	ErrEmptyUserID = errors.New("personalize: empty user id")

	// ErrInvalidPreferences wraps preference patch validation failures.
	ErrInvalidPreferences = errors.New("personalize: invalid preferences")

	// ErrInvalidWeeklyMix wraps weekly mix validation failures.
	ErrInvalidWeeklyMix = errors.New("personalize: invalid weekly mix config")
)

// ProfileKey returns the storage key of userID's profile.
func ProfileKey(userID string) string { return ProfileKeyPrefix + userID }

// EventPublisher receives a notification after each persisted change.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.ProfileEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.ProfileEvent) error { return nil }

// Config bounds the engine's per-user state and pacing.
type Config struct {
	MaxSearchHistory         int
	MaxActivityHistory       int
	MaxBehaviorEvents        int
	MaxRecommendationHistory int

	// SyncMinInterval suppresses a history sync that follows the last
	// successful one too closely.
	SyncMinInterval      time.Duration
	SyncRecentSearches   int
	SyncRecentActivities int

	// LoadConcurrency bounds parallel profile reads in Load.
	LoadConcurrency int

	// UserDelay paces batch refreshes. Zero disables pacing.
	UserDelay time.Duration

	WeeklyMix models.WeeklyMixConfig
	Weights   SimilarityWeights
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxSearchHistory:         100,
		MaxActivityHistory:       200,
		MaxBehaviorEvents:        500,
		MaxRecommendationHistory: 50,
		SyncMinInterval:          60 * time.Second,
		SyncRecentSearches:       10,
		SyncRecentActivities:     20,
		LoadConcurrency:          8,
		UserDelay:                2 * time.Second,
		WeeklyMix:                models.DefaultWeeklyMixConfig(),
		Weights:                  DefaultSimilarityWeights(),
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxSearchHistory <= 0 {
		c.MaxSearchHistory = d.MaxSearchHistory
	}
	if c.MaxActivityHistory <= 0 {
		c.MaxActivityHistory = d.MaxActivityHistory
	}
	if c.MaxBehaviorEvents <= 0 {
		c.MaxBehaviorEvents = d.MaxBehaviorEvents
	}
	if c.MaxRecommendationHistory <= 0 {
		c.MaxRecommendationHistory = d.MaxRecommendationHistory
	}
	if c.SyncMinInterval < 0 {
		c.SyncMinInterval = 0
	}
	if c.SyncRecentSearches <= 0 {
		c.SyncRecentSearches = d.SyncRecentSearches
	}
	if c.SyncRecentActivities <= 0 {
		c.SyncRecentActivities = d.SyncRecentActivities
	}
	if c.LoadConcurrency <= 0 {
		c.LoadConcurrency = d.LoadConcurrency
	}
	if c.UserDelay < 0 {
		c.UserDelay = 0
	}
	if c.WeeklyMix.MaxRecommendations <= 0 {
		c.WeeklyMix = d.WeeklyMix
	}
	if !c.WeeklyMix.Cadence.Valid() {
		c.WeeklyMix.Cadence = models.CadenceWeekly
	}
	if c.Weights == (SimilarityWeights{}) {
		c.Weights = d.Weights
	}
}

// Options are the engine's injected collaborators. Only Store is required.
type Options struct {
	Config    Config
	Clock     schedule.Clock
	Store     storage.Store
	Backend   backend.Client
	Publisher EventPublisher
	Location  *time.Location
	Logger    zerolog.Logger
}

// Engine owns every user's profile, history logs and refresh timestamps.
// It is safe for concurrent use.
//
// Profiles are copy-on-write: a mutation clones the current profile under
// the user's lock, edits the clone, recomputes insights and then swaps the
// pointer. Readers holding an older pointer never see a partial update.
type Engine struct {
	cfg       Config
	clock     schedule.Clock
	store     storage.Store
	backend   backend.Client
	publisher EventPublisher
	loc       *time.Location
	weights   SimilarityWeights
	logger    zerolog.Logger

	// mu guards every map below plus order and weeklyMix.
	mu         sync.RWMutex
	profiles   map[string]*models.UserProfile
	order      []string
	userLocks  map[string]*userMutex
	searches   map[string]*BoundedLog[models.SearchHistoryEntry]
	activities map[string]*BoundedLog[models.ActivityEntry]
	lastUpdate map[string]time.Time
	lastSync   map[string]time.Time
	syncing    map[string]bool
	weeklyMix  models.WeeklyMixConfig

	// generations numbers each profile incarnation so work started before
	// an erasure cannot write bookkeeping for the user afterwards. Guarded
	// by mu.
	generations map[string]uint64
	genSeq      uint64

	// stateMu serializes automation blob writes so an older snapshot never
	// overwrites a newer one.
	stateMu sync.Mutex

	refreshes singleflight.Group
}

// New creates an engine. Call Load to restore persisted state.
//
//nolint:gocritic // options passed by value
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("personalize: store is required")
	}
	cfg := opts.Config
	cfg.applyDefaults()

	clock := opts.Clock
	if clock == nil {
		clock = schedule.RealClock{}
	}
	pub := opts.Publisher
	if pub == nil {
		pub = nopPublisher{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Engine{
		cfg:         cfg,
		clock:       clock,
		store:       opts.Store,
		backend:     opts.Backend,
		publisher:   pub,
		loc:         loc,
		weights:     cfg.Weights,
		logger:      opts.Logger.With().Str("component", "personalize").Logger(),
		profiles:    make(map[string]*models.UserProfile),
		userLocks:   make(map[string]*userMutex),
		generations: make(map[string]uint64),
		searches:    make(map[string]*BoundedLog[models.SearchHistoryEntry]),
		activities:  make(map[string]*BoundedLog[models.ActivityEntry]),
		lastUpdate:  make(map[string]time.Time),
		lastSync:    make(map[string]time.Time),
		syncing:     make(map[string]bool),
		weeklyMix:   cfg.WeeklyMix,
	}, nil
}

// Location is the zone used for peak-hour buckets.
func (e *Engine) Location() *time.Location { return e.loc }

// Load restores profiles and automation state from the store. Malformed
// entries are logged and skipped; only a failure to list keys is returned.
func (e *Engine) Load(ctx context.Context) error {
	keys, err := e.store.Keys(ctx, ProfileKeyPrefix)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	loaded := make([]*models.UserProfile, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.LoadConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			loaded[i] = e.loadProfile(gctx, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	state := e.loadState(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range loaded {
		if p != nil {
			e.profiles[p.UserID] = p
			e.genSeq++
			e.generations[p.UserID] = e.genSeq
		}
	}

	// Persisted order first, then profiles the blob did not know about.
	seen := make(map[string]bool, len(e.profiles))
	e.order = e.order[:0]
	for _, id := range state.Users {
		if _, ok := e.profiles[id]; ok && !seen[id] {
			e.order = append(e.order, id)
			seen[id] = true
		}
	}
	for _, key := range keys {
		id := strings.TrimPrefix(key, ProfileKeyPrefix)
		if _, ok := e.profiles[id]; ok && !seen[id] {
			e.order = append(e.order, id)
			seen[id] = true
		}
	}

	for id, entries := range state.SearchHistory {
		log := NewBoundedLog[models.SearchHistoryEntry](e.cfg.MaxSearchHistory)
		log.Replace(entries)
		e.searches[id] = log
	}
	for id, entries := range state.ActivityHistory {
		log := NewBoundedLog[models.ActivityEntry](e.cfg.MaxActivityHistory)
		log.Replace(entries)
		e.activities[id] = log
	}
	// Timestamps without a profile belong to erased users.
	for id, ts := range state.LastUpdate {
		if _, ok := e.profiles[id]; ok {
			e.lastUpdate[id] = ts
		}
	}
	for id, ts := range state.LastSync {
		if _, ok := e.profiles[id]; ok {
			e.lastSync[id] = ts
		}
	}
	if state.Config != nil {
		e.weeklyMix = *state.Config
	}

	metrics.ProfilesKnown.Set(float64(len(e.profiles)))
	e.logger.Info().
		Int("profiles", len(e.profiles)).
		Int("search_logs", len(e.searches)).
		Int("activity_logs", len(e.activities)).
		Msg("Engine state restored")
	return nil
}

func (e *Engine) loadProfile(ctx context.Context, key string) *models.UserProfile {
	raw, err := e.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn().Err(err).Str("key", key).Msg("Failed to read profile")
		}
		return nil
	}
	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("Skipping malformed profile")
		return nil
	}
	if p.UserID == "" {
		p.UserID = strings.TrimPrefix(key, ProfileKeyPrefix)
	}
	e.normalizeProfile(&p)
	return &p
}

// normalizeProfile fills nil collections, enforces the caps and recomputes
// insights so a restored profile matches a live one.
func (e *Engine) normalizeProfile(p *models.UserProfile) {
	if p.Preferences.PreferredDomains == nil {
		p.Preferences.PreferredDomains = []string{}
	}
	if p.Preferences.PreferredMethodologies == nil {
		p.Preferences.PreferredMethodologies = []string{}
	}
	if p.Preferences.PreferredVenues == nil {
		p.Preferences.PreferredVenues = []string{}
	}
	if !p.Preferences.ReadingLevel.Valid() {
		p.Preferences.ReadingLevel = models.ReadingLevelIntermediate
	}
	if !p.Preferences.ContentLength.Valid() {
		p.Preferences.ContentLength = models.ContentLengthMedium
	}
	if !p.Preferences.UpdateCadence.Valid() {
		p.Preferences.UpdateCadence = models.CadenceWeekly
	}

	b := &p.Behavior
	limit := e.cfg.MaxBehaviorEvents
	b.PaperViews = keepNewest(b.PaperViews, limit)
	b.Searches = keepNewest(b.Searches, limit)
	b.Bookmarks = keepNewest(b.Bookmarks, limit)
	b.Likes = keepNewest(b.Likes, limit)
	b.DeepDives = keepNewest(b.DeepDives, limit)
	if b.DomainInteractions == nil {
		b.DomainInteractions = map[string]models.DomainTally{}
	}
	p.RecommendationHistory = keepNewest(p.RecommendationHistory, e.cfg.MaxRecommendationHistory)
	p.Insights = RecomputeInsights(p.Behavior, e.loc)
}

func keepNewest[T any](s []T, limit int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > limit {
		return append([]T{}, s[len(s)-limit:]...)
	}
	return s
}

// KnownUsers returns every profile's user id in first-seen order.
func (e *Engine) KnownUsers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// UserCount returns the number of known profiles.
func (e *Engine) UserCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.profiles)
}

// userMutex is a per-user lock counted by its holders and waiters.
type userMutex struct {
	sync.Mutex
	refs int
}

// lockUser serializes writers of userID. The returned func unlocks and
// drops the map entry once nobody holds or waits on it, so userLocks only
// holds users with work in progress.
func (e *Engine) lockUser(userID string) (unlock func()) {
	e.mu.Lock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &userMutex{}
		e.userLocks[userID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.userLocks, userID)
		}
		e.mu.Unlock()
	}
}

// stampIfCurrent records now in m for userID if the profile is still the
// incarnation gen. The caller must not hold e.mu.
func (e *Engine) stampIfCurrent(m map[string]time.Time, userID string, gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == 0 || e.generations[userID] != gen {
		return false
	}
	m[userID] = e.clock.Now()
	return true
}

// lookup returns the published profile or nil.
func (e *Engine) lookup(userID string) *models.UserProfile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.profiles[userID]
}

func (e *Engine) newProfile(userID, email string) *models.UserProfile {
	now := e.clock.Now()
	p := &models.UserProfile{
		UserID:                userID,
		Email:                 email,
		CreatedAt:             now,
		LastActive:            now,
		Preferences:           models.DefaultPreferences(),
		Behavior:              models.NewUserBehavior(),
		RecommendationHistory: []models.RecommendationRecord{},
	}
	p.Insights = RecomputeInsights(p.Behavior, e.loc)
	return p
}

// publishProfile swaps in p and records it in the insertion order if new.
func (e *Engine) publishProfile(p *models.UserProfile) (created bool) {
	e.mu.Lock()
	if _, ok := e.profiles[p.UserID]; !ok {
		created = true
		e.order = append(e.order, p.UserID)
		e.genSeq++
		e.generations[p.UserID] = e.genSeq
	}
	e.profiles[p.UserID] = p
	n := len(e.profiles)
	e.mu.Unlock()

	if created {
		metrics.ProfilesCreated.Inc()
		metrics.ProfilesKnown.Set(float64(n))
	}
	return created
}

// mutateLocked runs fn on a private copy of userID's profile, creating it first if
// needed, then recomputes insights, publishes and persists the result. fn
// returns false to abandon the change. The caller must hold the user lock.
func (e *Engine) mutateLocked(ctx context.Context, userID, email string, fn func(p *models.UserProfile) bool) *models.UserProfile {
	cur := e.lookup(userID)
	isNew := cur == nil
	if isNew {
		cur = e.newProfile(userID, email)
	}

	next := cur.Clone()
	changed := fn(next)
	if email != "" && next.Email == "" {
		next.Email = email
		changed = true
	}
	if !changed && !isNew {
		return cur
	}

	next.Insights = RecomputeInsights(next.Behavior, e.loc)
	if changed {
		next.LastActive = e.clock.Now()
	}
	e.publishProfile(next)
	e.saveProfile(ctx, next)
	if isNew {
		e.logger.Debug().Str("user_id", userID).Msg("Profile created")
	}
	return next
}

func (e *Engine) mutate(ctx context.Context, userID, email string, fn func(p *models.UserProfile) bool) *models.UserProfile {
	defer e.lockUser(userID)()
	return e.mutateLocked(ctx, userID, email, fn)
}

func (e *Engine) saveProfile(ctx context.Context, p *models.UserProfile) {
	raw, err := json.Marshal(p)
	if err != nil {
		e.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Failed to encode profile")
		return
	}
	// The profile is already published; the write must not be abandoned
	// with the request that caused it.
	if err := e.store.Save(context.WithoutCancel(ctx), ProfileKey(p.UserID), raw); err != nil {
		e.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("Failed to persist profile")
	}
}

func (e *Engine) publish(ctx context.Context, kind models.EventKind, userID, reason string) {
	ev := models.ProfileEvent{Kind: kind, UserID: userID, Reason: reason, Timestamp: e.clock.Now()}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn().Err(err).Str("kind", string(kind)).Str("user_id", userID).Msg("Failed to publish event")
	}
}

// GetOrCreateProfile returns userID's profile, creating it with default
// preferences if absent. A non-empty email fills an empty stored email.
func (e *Engine) GetOrCreateProfile(ctx context.Context, userID, email string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	p := e.mutate(ctx, userID, email, func(*models.UserProfile) bool { return false })
	return p.Clone(), nil
}

// GetUserProfile returns a deep copy of userID's profile, creating it lazily.
func (e *Engine) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if p := e.lookup(userID); p != nil {
		return p.Clone(), nil
	}
	return e.GetOrCreateProfile(ctx, userID, "")
}

// PeekProfile returns a deep copy of userID's profile without creating it.
func (e *Engine) PeekProfile(userID string) (*models.UserProfile, bool) {
	p := e.lookup(userID)
	if p == nil {
		return nil, false
	}
	return p.Clone(), true
}

// UpdatePreferences merges patch into userID's preferences and persists the
// profile. An invalid patch leaves the profile untouched and returns an
// error wrapping ErrInvalidPreferences.
func (e *Engine) UpdatePreferences(ctx context.Context, userID string, patch models.PreferencesPatch) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}

	p := e.mutate(ctx, userID, "", func(p *models.UserProfile) bool {
		p.Preferences = patch.Apply(p.Preferences)
		// Preference edits count as activity even when nothing changed.
		return true
	})
	e.publish(ctx, models.EventProfileUpdated, userID, "preferences")
	return p.Clone(), nil
}

// RecordRecommendations appends a shown/interacted record to the bounded
// recommendation history.
func (e *Engine) RecordRecommendations(ctx context.Context, userID string, shown, interactions []string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	rec := models.RecommendationRecord{
		Timestamp:         e.clock.Now(),
		RecommendationIDs: nonNilStrings(shown),
		InteractionIDs:    nonNilStrings(interactions),
	}
	p := e.mutate(ctx, userID, "", func(p *models.UserProfile) bool {
		p.RecommendationHistory = appendBounded(p.RecommendationHistory, rec, e.cfg.MaxRecommendationHistory)
		return true
	})
	e.publish(ctx, models.EventProfileUpdated, userID, "recommendations")
	return p.Clone(), nil
}

// EraseUser removes every trace of userID: profile, history logs and
// refresh bookkeeping. It reports whether anything was known about the user.
func (e *Engine) EraseUser(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	defer e.lockUser(userID)()

	e.mu.Lock()
	_, hadProfile := e.profiles[userID]
	_, hadSearches := e.searches[userID]
	_, hadActivities := e.activities[userID]
	_, hadUpdate := e.lastUpdate[userID]
	existed := hadProfile || hadSearches || hadActivities || hadUpdate

	delete(e.profiles, userID)
	delete(e.generations, userID)
	delete(e.searches, userID)
	delete(e.activities, userID)
	delete(e.lastUpdate, userID)
	delete(e.lastSync, userID)
	for i, id := range e.order {
		if id == userID {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
	n := len(e.profiles)
	e.mu.Unlock()

	if err := e.store.Delete(context.WithoutCancel(ctx), ProfileKey(userID)); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to delete persisted profile")
	}
	e.persistState(ctx)

	if existed {
		metrics.ProfilesErased.Inc()
		metrics.ProfilesKnown.Set(float64(n))
		e.publish(ctx, models.EventProfileErased, userID, "")
		e.logger.Info().Str("user_id", userID).Msg("User data erased")
	}
	return existed
}

// WeeklyMix returns the active weekly mix configuration.
func (e *Engine) WeeklyMix() models.WeeklyMixConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weeklyMix
}

// UpdateWeeklyMix validates and installs cfg, persisting it immediately.
func (e *Engine) UpdateWeeklyMix(ctx context.Context, cfg models.WeeklyMixConfig) (models.WeeklyMixConfig, error) {
	if cfg.Cadence == "" {
		cfg.Cadence = models.CadenceWeekly
	}
	if verr := validateWeeklyMix(cfg); verr != nil {
		return models.WeeklyMixConfig{}, fmt.Errorf("%w: %v", ErrInvalidWeeklyMix, verr)
	}

	e.mu.Lock()
	e.weeklyMix = cfg
	e.mu.Unlock()

	e.persistState(ctx)
	e.publish(ctx, models.EventWeeklyMixUpdated, "", string(cfg.Cadence))
	e.logger.Info().
		Str("cadence", string(cfg.Cadence)).
		Int("max_recommendations", cfg.MaxRecommendations).
		Msg("Weekly mix configuration updated")
	return cfg, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
