// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import (
	"fmt"
	"math"
	"time"
)

// ReadingLevel is the user's self-declared reading level.
type ReadingLevel string

const (
	ReadingLevelBeginner     ReadingLevel = "beginner"
	ReadingLevelIntermediate ReadingLevel = "intermediate"
	ReadingLevelAdvanced     ReadingLevel = "advanced"
	ReadingLevelExpert       ReadingLevel = "expert"
)

// readingLevelOrder is the ordinal order used for similarity scoring.
var readingLevelOrder = []ReadingLevel{
	ReadingLevelBeginner,
	ReadingLevelIntermediate,
	ReadingLevelAdvanced,
	ReadingLevelExpert,
}

// Index returns the ordinal position of the level (0-3), or -1 if unknown.
func (l ReadingLevel) Index() int {
	for i, v := range readingLevelOrder {
		if v == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a known reading level.
func (l ReadingLevel) Valid() bool { return l.Index() >= 0 }

// ContentLength is the preferred paper length.
type ContentLength string

const (
	ContentLengthShort  ContentLength = "short"
	ContentLengthMedium ContentLength = "medium"
	ContentLengthLong   ContentLength = "long"
	ContentLengthAny    ContentLength = "any"
)

// Valid reports whether c is a known content length.
func (c ContentLength) Valid() bool {
	switch c {
	case ContentLengthShort, ContentLengthMedium, ContentLengthLong, ContentLengthAny:
		return true
	}
	return false
}

// UpdateCadence is the minimum interval before a user's recommendations are
// considered stale.
type UpdateCadence string

const (
	CadenceDaily    UpdateCadence = "daily"
	CadenceWeekly   UpdateCadence = "weekly"
	CadenceBiWeekly UpdateCadence = "bi-weekly"
)

// Threshold returns the staleness threshold for the cadence.
// Unknown values fall back to the weekly threshold.
func (c UpdateCadence) Threshold() time.Duration {
	switch c {
	case CadenceDaily:
		return 24 * time.Hour
	case CadenceBiWeekly:
		return 14 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Valid reports whether c is a known cadence.
func (c UpdateCadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceBiWeekly:
		return true
	}
	return false
}

// NotificationSettings holds per-channel notification flags.
type NotificationSettings struct {
	Email                    bool `json:"email"`
	InApp                    bool `json:"in_app"`
	WeeklyDigest             bool `json:"weekly_digest"`
	NewPapers                bool `json:"new_papers"`
	CrossDomainSuggestions   bool `json:"cross_domain_suggestions"`
	CollaborationSuggestions bool `json:"collaboration_suggestions"`
}

// UserPreferences are the explicit, user-settable preferences.
type UserPreferences struct {
	PreferredDomains       []string             `json:"preferred_domains"`
	PreferredMethodologies []string             `json:"preferred_methodologies"`
	PreferredVenues        []string             `json:"preferred_venues"`
	ReadingLevel           ReadingLevel         `json:"reading_level"`
	NoveltyPreference      float64              `json:"novelty_preference"`
	ContentLength          ContentLength        `json:"content_length"`
	UpdateCadence          UpdateCadence        `json:"update_cadence"`
	Notifications          NotificationSettings `json:"notifications"`
}

// DefaultPreferences returns the preferences assigned to a newly created profile.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredDomains:       []string{},
		PreferredMethodologies: []string{},
		PreferredVenues:        []string{},
		ReadingLevel:           ReadingLevelIntermediate,
		NoveltyPreference:      0.5,
		ContentLength:          ContentLengthMedium,
		UpdateCadence:          CadenceWeekly,
		Notifications: NotificationSettings{
			Email:        true,
			InApp:        true,
			WeeklyDigest: true,
			NewPapers:    true,
		},
	}
}

// Clone returns a deep copy of p.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.PreferredDomains = cloneStrings(p.PreferredDomains)
	out.PreferredMethodologies = cloneStrings(p.PreferredMethodologies)
	out.PreferredVenues = cloneStrings(p.PreferredVenues)
	return out
}

// NotificationPatch is a partial update of NotificationSettings.
type NotificationPatch struct {
	Email                    *bool `json:"email,omitempty"`
	InApp                    *bool `json:"in_app,omitempty"`
	WeeklyDigest             *bool `json:"weekly_digest,omitempty"`
	NewPapers                *bool `json:"new_papers,omitempty"`
	CrossDomainSuggestions   *bool `json:"cross_domain_suggestions,omitempty"`
	CollaborationSuggestions *bool `json:"collaboration_suggestions,omitempty"`
}

// PreferencesPatch is a partial update of UserPreferences. A nil field leaves
// the stored value unchanged; a non-nil empty slice clears the stored list.
type PreferencesPatch struct {
	PreferredDomains       *[]string          `json:"preferred_domains,omitempty"`
	PreferredMethodologies *[]string          `json:"preferred_methodologies,omitempty"`
	PreferredVenues        *[]string          `json:"preferred_venues,omitempty"`
	ReadingLevel           *ReadingLevel      `json:"reading_level,omitempty"`
	NoveltyPreference      *float64           `json:"novelty_preference,omitempty"`
	ContentLength          *ContentLength     `json:"content_length,omitempty"`
	UpdateCadence          *UpdateCadence     `json:"update_cadence,omitempty"`
	Notifications          *NotificationPatch `json:"notifications,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *PreferencesPatch) IsEmpty() bool {
	return p.PreferredDomains == nil && p.PreferredMethodologies == nil &&
		p.PreferredVenues == nil && p.ReadingLevel == nil &&
		p.NoveltyPreference == nil && p.ContentLength == nil &&
		p.UpdateCadence == nil && p.Notifications == nil
}

// Validate checks enum and range constraints of the non-nil fields.
func (p *PreferencesPatch) Validate() error {
	if p.ReadingLevel != nil && !p.ReadingLevel.Valid() {
		return fmt.Errorf("invalid reading_level %q", *p.ReadingLevel)
	}
	if p.NoveltyPreference != nil && !inUnitInterval(*p.NoveltyPreference) {
		return fmt.Errorf("novelty_preference must be between 0 and 1, got %v", *p.NoveltyPreference)
	}
	if p.ContentLength != nil && !p.ContentLength.Valid() {
		return fmt.Errorf("invalid content_length %q", *p.ContentLength)
	}
	if p.UpdateCadence != nil && !p.UpdateCadence.Valid() {
		return fmt.Errorf("invalid update_cadence %q", *p.UpdateCadence)
	}
	return nil
}

// inUnitInterval rejects NaN, which fails every comparison.
func inUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Apply merges the patch into prefs and returns the result. prefs is not modified.
// Domain, methodology and venue lists are deduplicated preserving first occurrence.
func (p *PreferencesPatch) Apply(prefs UserPreferences) UserPreferences {
	out := prefs.Clone()
	if p.PreferredDomains != nil {
		out.PreferredDomains = dedupe(*p.PreferredDomains)
	}
	if p.PreferredMethodologies != nil {
		out.PreferredMethodologies = dedupe(*p.PreferredMethodologies)
	}
	if p.PreferredVenues != nil {
		out.PreferredVenues = dedupe(*p.PreferredVenues)
	}
	if p.ReadingLevel != nil {
		out.ReadingLevel = *p.ReadingLevel
	}
	if p.NoveltyPreference != nil {
		out.NoveltyPreference = *p.NoveltyPreference
	}
	if p.ContentLength != nil {
		out.ContentLength = *p.ContentLength
	}
	if p.UpdateCadence != nil {
		out.UpdateCadence = *p.UpdateCadence
	}
	if n := p.Notifications; n != nil {
		setBool(&out.Notifications.Email, n.Email)
		setBool(&out.Notifications.InApp, n.InApp)
		setBool(&out.Notifications.WeeklyDigest, n.WeeklyDigest)
		setBool(&out.Notifications.NewPapers, n.NewPapers)
		setBool(&out.Notifications.CrossDomainSuggestions, n.CrossDomainSuggestions)
		setBool(&out.Notifications.CollaborationSuggestions, n.CollaborationSuggestions)
	}
	return out
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
