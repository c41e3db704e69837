// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

/*
Package models defines the data structures shared by the PaperLens
personalization engine, its HTTP API, and its persistence layer.

Model Categories:

 1. Profile Models:
    - UserProfile: identity, preferences, behavior, derived insights, and
    recommendation history for one user
    - UserPreferences: explicit, user-settable preferences
    - PreferencesPatch: partial preference update with named optional fields

 2. Behavior Models:
    - UserBehavior: five bounded behavior sequences plus the domain tally
    - SearchHistoryEntry / ActivityEntry: raw events produced by the UI

 3. Derived Models:
    - Insights: recomputed from UserBehavior, never edited directly
    - RecommendationContext: summary handed to the recommendation backend

 4. Automation Models:
    - WeeklyMixConfig: process-wide weekly mix tuning

All models serialize to JSON with snake_case field names so the persisted
representation and the API representation are identical.
*/
package models
