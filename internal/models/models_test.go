// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package models

import (
	"math"
	"testing"
	"time"
)

func TestReadingLevel_Index(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level ReadingLevel
		want  int
	}{
		{ReadingLevelBeginner, 0},
		{ReadingLevelIntermediate, 1},
		{ReadingLevelAdvanced, 2},
		{ReadingLevelExpert, 3},
		{ReadingLevel("guru"), -1},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()
			if got := tt.level.Index(); got != tt.want {
				t.Errorf("Index() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpdateCadence_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cadence UpdateCadence
		want    time.Duration
	}{
		{CadenceDaily, 24 * time.Hour},
		{CadenceWeekly, 7 * 24 * time.Hour},
		{CadenceBiWeekly, 14 * 24 * time.Hour},
		{UpdateCadence(""), 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := tt.cadence.Threshold(); got != tt.want {
			t.Errorf("%q.Threshold() = %v, want %v", tt.cadence, got, tt.want)
		}
	}
}

func TestDefaultPreferences(t *testing.T) {
	t.Parallel()

	p := DefaultPreferences()
	if len(p.PreferredDomains) != 0 {
		t.Errorf("expected no preferred domains, got %v", p.PreferredDomains)
	}
	if p.ReadingLevel != ReadingLevelIntermediate {
		t.Errorf("reading level = %q", p.ReadingLevel)
	}
	if p.NoveltyPreference != 0.5 {
		t.Errorf("novelty = %v", p.NoveltyPreference)
	}
	if p.UpdateCadence != CadenceWeekly {
		t.Errorf("cadence = %q", p.UpdateCadence)
	}
	n := p.Notifications
	if !n.Email || !n.InApp || !n.WeeklyDigest || !n.NewPapers {
		t.Errorf("expected channel notifications enabled, got %+v", n)
	}
	if n.CrossDomainSuggestions || n.CollaborationSuggestions {
		t.Errorf("expected suggestion notifications disabled, got %+v", n)
	}
}

func TestPreferencesPatch_Apply(t *testing.T) {
	t.Parallel()

	domains := []string{"genomics", "oncology", "genomics", ""}
	level := ReadingLevelExpert
	off := false
	patch := &PreferencesPatch{
		PreferredDomains: &domains,
		ReadingLevel:     &level,
		Notifications:    &NotificationPatch{Email: &off},
	}

	base := DefaultPreferences()
	got := patch.Apply(base)

	if len(got.PreferredDomains) != 2 || got.PreferredDomains[0] != "genomics" || got.PreferredDomains[1] != "oncology" {
		t.Errorf("domains = %v, want [genomics oncology]", got.PreferredDomains)
	}
	if got.ReadingLevel != ReadingLevelExpert {
		t.Errorf("reading level = %q", got.ReadingLevel)
	}
	if got.Notifications.Email {
		t.Error("email notifications should be disabled")
	}
	if !got.Notifications.InApp {
		t.Error("untouched notification flag changed")
	}
	if got.NoveltyPreference != base.NoveltyPreference {
		t.Error("untouched novelty preference changed")
	}
	if len(base.PreferredDomains) != 0 {
		t.Error("Apply modified its input")
	}
}

func TestPreferencesPatch_Validate(t *testing.T) {
	t.Parallel()

	bad := ReadingLevel("guru")
	high := 1.5
	cadence := UpdateCadence("monthly")
	length := ContentLength("epic")
	ok := 0.2
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name    string
		patch   PreferencesPatch
		wantErr bool
	}{
		{"empty", PreferencesPatch{}, false},
		{"valid novelty", PreferencesPatch{NoveltyPreference: &ok}, false},
		{"bad level", PreferencesPatch{ReadingLevel: &bad}, true},
		{"novelty out of range", PreferencesPatch{NoveltyPreference: &high}, true},
		{"novelty NaN", PreferencesPatch{NoveltyPreference: &nan}, true},
		{"novelty infinite", PreferencesPatch{NoveltyPreference: &inf}, true},
		{"bad cadence", PreferencesPatch{UpdateCadence: &cadence}, true},
		{"bad length", PreferencesPatch{ContentLength: &length}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeeklyMixConfig_Normalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		d, n, p float64
		want    [3]float64
	}{
		{"already normalized", 0.3, 0.3, 0.4, [3]float64{0.3, 0.3, 0.4}},
		{"scaled", 1, 1, 2, [3]float64{0.25, 0.25, 0.5}},
		{"all zero", 0, 0, 0, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"negative clamped", -1, 1, 1, [3]float64{0, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultWeeklyMixConfig()
			cfg.DiversityWeight, cfg.NoveltyWeight, cfg.PersonalizationWeight = tt.d, tt.n, tt.p
			got := cfg.Normalized()
			for i, v := range []float64{got.DiversityWeight, got.NoveltyWeight, got.PersonalizationWeight} {
				if math.Abs(v-tt.want[i]) > 1e-9 {
					t.Errorf("weight[%d] = %v, want %v", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestUserProfile_CloneIsDeep(t *testing.T) {
	t.Parallel()

	p := &UserProfile{
		UserID:      "u1",
		Preferences: DefaultPreferences(),
		Behavior:    NewUserBehavior(),
		Insights:    Insights{ExpertiseScores: map[string]float64{"ml": 1}},
	}
	p.Behavior.DomainInteractions["ml"] = DomainTally{Count: 1}
	p.Behavior.Bookmarks = append(p.Behavior.Bookmarks, Bookmark{PaperID: "1", Tags: []string{"a"}})

	c := p.Clone()
	c.Behavior.DomainInteractions["ml"] = DomainTally{Count: 9}
	c.Behavior.Bookmarks[0].Tags[0] = "changed"
	c.Insights.ExpertiseScores["ml"] = 0

	if p.Behavior.DomainInteractions["ml"].Count != 1 {
		t.Error("domain tally shared between clone and original")
	}
	if p.Behavior.Bookmarks[0].Tags[0] != "a" {
		t.Error("bookmark tags shared between clone and original")
	}
	if p.Insights.ExpertiseScores["ml"] != 1 {
		t.Error("expertise scores shared between clone and original")
	}
}

func TestSearchSource_Normalize(t *testing.T) {
	t.Parallel()

	if SearchSource("").Normalize() != SourceUnknown {
		t.Error("empty source should normalize to unknown")
	}
	if SourceSmartInbox.Normalize() != SourceSmartInbox {
		t.Error("known source should be kept")
	}
}
