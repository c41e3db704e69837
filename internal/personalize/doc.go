// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package personalize tracks research behavior per user and decides when the
// recommendation backend should regenerate a user's weekly mix.
//
// # Data Flow
//
// Writes flow from the tracking calls into the bounded per-user logs, then
// into the profile's behavior sequences, and finally into recomputed
// Insights:
//
//	TrackSearch / TrackActivity / Track*  ->  BoundedLog  ->  UserBehavior  ->  Insights
//
// Reads flow the other way: profiles and insights are summarized into a
// RecommendationContext that travels with every refresh request.
//
// # Refresh Model
//
// Each user is either fresh or stale. A user becomes stale when no refresh
// has succeeded yet or when the preference cadence (daily, weekly,
// bi-weekly) has elapsed. Any tracked event for a stale user triggers
// ForceUpdate. Failures are logged and leave the user stale; there is no
// retry queue. Two batch passes run on top of that:
//
//   - SweepStaleUsers refreshes only stale users (hourly by default)
//   - RefreshAllUsers refreshes everyone (the Monday 06:00 weekly batch)
//
// Both walk users in first-seen order, paced by a token bucket.
//
// # Persistence
//
// Every mutation is written through to the storage.Store before the call
// returns: profiles under "user_profile_<id>", and the engine's own
// bookkeeping (history logs, refresh and sync timestamps, weekly mix
// config) under "weeklyMixAutomation". Load tolerates missing or malformed
// entries.
//
// # Usage
//
//	eng, err := personalize.New(personalize.Options{
//	    Config:  personalize.DefaultConfig(),
//	    Store:   store,
//	    Backend: client,
//	    Logger:  logger,
//	})
//	if err := eng.Load(ctx); err != nil { ... }
//	eng.TrackSearch(ctx, "user-1", models.SearchHistoryEntry{Query: "crispr"})
package personalize
