// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import "time"

// PaperView records a single paper being opened. Duration is in seconds.
type PaperView struct {
	PaperID   string    `json:"paper_id"`
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"`
}

// SearchEvent is the behavior-log form of a search.
type SearchEvent struct {
	Query          string    `json:"query"`
	Timestamp      time.Time `json:"timestamp"`
	ClickedResults []string  `json:"clicked_results"`
}

// Bookmark records a paper saved by the user.
type Bookmark struct {
	PaperID   string    `json:"paper_id"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags"`
}

// Like records a paper the user liked.
type Like struct {
	PaperID   string    `json:"paper_id"`
	Timestamp time.Time `json:"timestamp"`
}

// DeepDive records a deep-dive read. Completion is a fraction in [0,1].
type DeepDive struct {
	PaperID    string    `json:"paper_id"`
	Timestamp  time.Time `json:"timestamp"`
	Completion float64   `json:"completion"`
}

// DomainTally counts interactions with one research domain.
type DomainTally struct {
	Count           int       `json:"count"`
	LastInteraction time.Time `json:"last_interaction"`
}

// UserBehavior is the implicit behavior log of a user. Each sequence is
// ordered by insertion and bounded; the oldest entries are evicted first.
type UserBehavior struct {
	PaperViews         []PaperView            `json:"paper_views"`
	Searches           []SearchEvent          `json:"searches"`
	Bookmarks          []Bookmark             `json:"bookmarks"`
	Likes              []Like                 `json:"likes"`
	DeepDives          []DeepDive             `json:"deep_dives"`
	DomainInteractions map[string]DomainTally `json:"domain_interactions"`
}

// NewUserBehavior returns an empty behavior log with non-nil collections.
func NewUserBehavior() UserBehavior {
	return UserBehavior{
		PaperViews:         []PaperView{},
		Searches:           []SearchEvent{},
		Bookmarks:          []Bookmark{},
		Likes:              []Like{},
		DeepDives:          []DeepDive{},
		DomainInteractions: map[string]DomainTally{},
	}
}

// Clone returns a deep copy of b.
func (b UserBehavior) Clone() UserBehavior {
	out := UserBehavior{
		PaperViews: append([]PaperView{}, b.PaperViews...),
		Likes:      append([]Like{}, b.Likes...),
		DeepDives:  append([]DeepDive{}, b.DeepDives...),
	}
	out.Searches = make([]SearchEvent, len(b.Searches))
	for i, s := range b.Searches {
		s.ClickedResults = cloneStrings(s.ClickedResults)
		out.Searches[i] = s
	}
	out.Bookmarks = make([]Bookmark, len(b.Bookmarks))
	for i, bm := range b.Bookmarks {
		bm.Tags = cloneStrings(bm.Tags)
		out.Bookmarks[i] = bm
	}
	out.DomainInteractions = make(map[string]DomainTally, len(b.DomainInteractions))
	for k, v := range b.DomainInteractions {
		out.DomainInteractions[k] = v
	}
	return out
}

// ViewedPaperIDs returns the set of paper IDs the user has viewed.
func (b *UserBehavior) ViewedPaperIDs() map[string]struct{} {
	set := make(map[string]struct{}, len(b.PaperViews))
	for _, v := range b.PaperViews {
		if v.PaperID != "" {
			set[v.PaperID] = struct{}{}
		}
	}
	return set
}
