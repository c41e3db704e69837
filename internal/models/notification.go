// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import "time"

// EventKind names a profile lifecycle notification.
type EventKind string

const (
	EventProfileUpdated           EventKind = "profile.updated"
	EventRecommendationsRefreshed EventKind = "recommendations.refreshed"
	EventProfileErased            EventKind = "profile.erased"
	EventWeeklyMixUpdated         EventKind = "weekly_mix.updated"
)

// ProfileEvent is published after a state change has been persisted.
type ProfileEvent struct {
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
