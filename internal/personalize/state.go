// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/paperlens/internal/models"
	"github.com/tomtom215/paperlens/internal/storage"
	"github.com/tomtom215/paperlens/internal/validation"
)

// automationState is the persisted bookkeeping blob stored at AutomationKey.
type automationState struct {
	Users           []string                               `json:"users"`
	SearchHistory   map[string][]models.SearchHistoryEntry `json:"search_history"`
	ActivityHistory map[string][]models.ActivityEntry      `json:"activity_history"`
	LastUpdate      map[string]time.Time                   `json:"last_update"`
	LastSync        map[string]time.Time                   `json:"last_sync"`
	Config          *models.WeeklyMixConfig                `json:"config,omitempty"`
}

func emptyState() automationState {
	return automationState{
		SearchHistory:   map[string][]models.SearchHistoryEntry{},
		ActivityHistory: map[string][]models.ActivityEntry{},
		LastUpdate:      map[string]time.Time{},
		LastSync:        map[string]time.Time{},
	}
}

// loadState reads the automation blob. Missing or malformed blobs yield an
// empty state; a malformed config section is dropped on its own.
func (e *Engine) loadState(ctx context.Context) automationState {
	raw, err := e.store.Load(ctx, AutomationKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn().Err(err).Msg("Failed to read automation state, starting empty")
		}
		return emptyState()
	}

	var st automationState
	if err := json.Unmarshal(raw, &st); err != nil {
		e.logger.Warn().Err(err).Msg("Malformed automation state, starting empty")
		return emptyState()
	}

	if st.SearchHistory == nil {
		st.SearchHistory = map[string][]models.SearchHistoryEntry{}
	}
	if st.ActivityHistory == nil {
		st.ActivityHistory = map[string][]models.ActivityEntry{}
	}
	if st.LastUpdate == nil {
		st.LastUpdate = map[string]time.Time{}
	}
	if st.LastSync == nil {
		st.LastSync = map[string]time.Time{}
	}
	if st.Config != nil {
		if verr := validateWeeklyMix(*st.Config); verr != nil {
			e.logger.Warn().Err(verr).Msg("Ignoring invalid persisted weekly mix config")
			st.Config = nil
		}
	}
	return st
}

// snapshotState copies the bookkeeping maps for persistence.
func (e *Engine) snapshotState() automationState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := automationState{
		Users:           append([]string{}, e.order...),
		SearchHistory:   make(map[string][]models.SearchHistoryEntry, len(e.searches)),
		ActivityHistory: make(map[string][]models.ActivityEntry, len(e.activities)),
		LastUpdate:      make(map[string]time.Time, len(e.lastUpdate)),
		LastSync:        make(map[string]time.Time, len(e.lastSync)),
	}
	for id, log := range e.searches {
		st.SearchHistory[id] = log.Items()
	}
	for id, log := range e.activities {
		st.ActivityHistory[id] = log.Items()
	}
	for id, ts := range e.lastUpdate {
		st.LastUpdate[id] = ts
	}
	for id, ts := range e.lastSync {
		st.LastSync[id] = ts
	}
	cfg := e.weeklyMix
	st.Config = &cfg
	return st
}

// persistState writes the automation blob. Failures are logged.
func (e *Engine) persistState(ctx context.Context) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	raw, err := json.Marshal(e.snapshotState())
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to encode automation state")
		return
	}
	if err := e.store.Save(context.WithoutCancel(ctx), AutomationKey, raw); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to persist automation state")
	}
}

func validateWeeklyMix(cfg models.WeeklyMixConfig) error {
	if verr := validation.ValidateStruct(cfg); verr != nil {
		return verr
	}
	if cfg.Cadence != "" && !cfg.Cadence.Valid() {
		return errors.New("cadence must be one of: daily weekly bi-weekly")
	}
	return nil
}
