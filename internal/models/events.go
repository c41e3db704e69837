// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import "time"

// SearchSource identifies the UI surface a search originated from.
type SearchSource string

const (
	SourceSearchPage    SearchSource = "search_page"
	SourceDashboard     SearchSource = "dashboard"
	SourceProject       SearchSource = "project"
	SourceCollection    SearchSource = "collection"
	SourceNetwork       SearchSource = "network"
	SourceSemanticPanel SearchSource = "semantic_panel"
	SourceSmartInbox    SearchSource = "smart_inbox"
	SourceUnknown       SearchSource = "unknown"
)

// Normalize maps empty or unrecognized sources to SourceUnknown.
func (s SearchSource) Normalize() SearchSource {
	switch s {
	case SourceSearchPage, SourceDashboard, SourceProject, SourceCollection,
		SourceNetwork, SourceSemanticPanel, SourceSmartInbox:
		return s
	default:
		return SourceUnknown
	}
}

// SearchContext carries the optional location of a search within the app.
type SearchContext struct {
	ProjectID     string `json:"project_id,omitempty"`
	CollectionID  string `json:"collection_id,omitempty"`
	NetworkNodeID string `json:"network_node_id,omitempty"`
}

// SearchHistoryEntry is a raw search event as reported by the UI.
type SearchHistoryEntry struct {
	Query         string         `json:"query" validate:"max=1000"`
	Timestamp     time.Time      `json:"timestamp"`
	ResultCount   int            `json:"result_count" validate:"gte=0"`
	ClickedPapers []string       `json:"clicked_papers"`
	Source        SearchSource   `json:"source"`
	Context       *SearchContext `json:"context,omitempty"`
}

// ActivityType classifies an ActivityEntry.
type ActivityType string

const (
	ActivityPaperView         ActivityType = "paper_view"
	ActivityCollectionAdd     ActivityType = "collection_add"
	ActivityNetworkNavigation ActivityType = "network_navigation"
	ActivitySemanticDiscovery ActivityType = "semantic_discovery"
	ActivityDeepDive          ActivityType = "deep_dive"
	ActivityBookmark          ActivityType = "bookmark"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPaperView, ActivityCollectionAdd, ActivityNetworkNavigation,
		ActivitySemanticDiscovery, ActivityDeepDive, ActivityBookmark:
		return true
	}
	return false
}

// ActivityEntry is a raw activity event as reported by the UI.
// Context is free-form; keys understood by the engine are duration,
// duration_seconds, completion, tags, domain and domains.
type ActivityEntry struct {
	Type      ActivityType   `json:"type" validate:"required"`
	PMID      string         `json:"pmid,omitempty"`
	Title     string         `json:"title,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    SearchSource   `json:"source"`
	Context   map[string]any `json:"context,omitempty"`
}
