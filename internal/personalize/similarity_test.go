// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/paperlens/internal/models"
)

func profileWith(domains []string, views []string, level models.ReadingLevel, novelty float64) *models.UserProfile {
	p := &models.UserProfile{
		Preferences: models.DefaultPreferences(),
		Behavior:    models.NewUserBehavior(),
	}
	p.Preferences.PreferredDomains = domains
	p.Preferences.ReadingLevel = level
	p.Preferences.NoveltyPreference = novelty
	for _, id := range views {
		p.Behavior.PaperViews = append(p.Behavior.PaperViews, models.PaperView{PaperID: id})
	}
	return p
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b *models.UserProfile
		want float64
	}{
		{
			name: "identical profiles",
			a:    profileWith([]string{"x", "y"}, []string{"p1", "p2"}, models.ReadingLevelAdvanced, 0.7),
			b:    profileWith([]string{"x", "y"}, []string{"p1", "p2"}, models.ReadingLevelAdvanced, 0.7),
			want: 1,
		},
		{
			name: "partial overlap on every signal",
			a:    profileWith([]string{"x", "y"}, []string{"p1", "p2"}, models.ReadingLevelIntermediate, 0.5),
			b:    profileWith([]string{"y", "z"}, []string{"p2", "p3"}, models.ReadingLevelExpert, 0.5),
			// (0.3*1/3 + 0.4*1/3 + 0.2*1/3 + 0.1*1) / 1.0
			want: 0.4,
		},
		{
			name: "no domains or views on either side",
			a:    profileWith(nil, nil, models.ReadingLevelIntermediate, 0.5),
			b:    profileWith(nil, nil, models.ReadingLevelIntermediate, 0.5),
			want: 1,
		},
		{
			name: "domains only on one side count as disjoint",
			a:    profileWith([]string{"x"}, nil, models.ReadingLevelBeginner, 0.2),
			b:    profileWith(nil, nil, models.ReadingLevelBeginner, 0.2),
			// (0.3*0 + 0.2 + 0.1) / 0.6
			want: 0.5,
		},
		{
			name: "opposite reading levels and novelty",
			a:    profileWith(nil, nil, models.ReadingLevelBeginner, 0),
			b:    profileWith(nil, nil, models.ReadingLevelExpert, 1),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Similarity(tt.a, tt.b); !floatEq(got, tt.want) {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarity_SelfAndSymmetry(t *testing.T) {
	t.Parallel()

	profiles := []*models.UserProfile{
		profileWith([]string{"a"}, []string{"1", "2", "3"}, models.ReadingLevelExpert, 0.9),
		profileWith([]string{"a", "b", "c"}, []string{"3"}, models.ReadingLevelBeginner, 0.1),
		profileWith(nil, []string{"4"}, models.ReadingLevelAdvanced, 0.33),
		profileWith([]string{"d"}, nil, models.ReadingLevelIntermediate, 0.5),
	}

	for i, a := range profiles {
		if got := Similarity(a, a); got != 1 {
			t.Errorf("Similarity(p%d, p%d) = %v, want 1", i, i, got)
		}
		for j, b := range profiles {
			ab, ba := Similarity(a, b), Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(p%d, p%d) = %v but reverse = %v", i, j, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(p%d, p%d) = %v out of range", i, j, ab)
			}
		}
	}
}

func TestSimilarity_Nil(t *testing.T) {
	t.Parallel()

	if got := Similarity(nil, profileWith(nil, nil, models.ReadingLevelExpert, 1)); got != 0 {
		t.Errorf("Similarity(nil, p) = %v, want 0", got)
	}
}

func TestSimilarityWeights_BehaviorOnly(t *testing.T) {
	t.Parallel()

	w := SimilarityWeights{Behavior: 1}
	a := profileWith([]string{"x"}, []string{"p1", "p2"}, models.ReadingLevelBeginner, 0)
	b := profileWith([]string{"y"}, []string{"p2"}, models.ReadingLevelExpert, 1)

	if got := w.Score(a, b); !floatEq(got, 0.5) {
		t.Errorf("Score() = %v, want 0.5", got)
	}
}

func TestEngine_FindSimilarUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setDomains := func(userID string, domains ...string) {
		t.Helper()
		if _, err := env.eng.UpdatePreferences(ctx, userID, models.PreferencesPatch{PreferredDomains: &domains}); err != nil {
			t.Fatalf("UpdatePreferences(%s) error = %v", userID, err)
		}
	}
	setDomains("u1", "a", "b")
	setDomains("u2", "a", "b")
	setDomains("u3", "a")
	setDomains("u4", "c")
	setDomains("u0", "b", "a")

	got := env.eng.FindSimilarUsers(ctx, "u1", 3)
	want := []SimilarUser{
		{UserID: "u0", Score: 1},
		{UserID: "u2", Score: 1},
		{UserID: "u3", Score: 0.75},
	}
	if len(got) != len(want) {
		t.Fatalf("FindSimilarUsers() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].UserID != want[i].UserID || !floatEq(got[i].Score, want[i].Score) {
			t.Errorf("result[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	all := env.eng.FindSimilarUsers(ctx, "u1", 10)
	if len(all) != 4 {
		t.Fatalf("FindSimilarUsers(limit 10) returned %d users, want 4", len(all))
	}
	if last := all[3]; last.UserID != "u4" || !floatEq(last.Score, 0.5) {
		t.Errorf("last result = %+v, want u4 at 0.5", last)
	}
}

func TestEngine_FindSimilarUsers_Empty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.eng.GetOrCreateProfile(ctx, "u1", ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		userID string
		limit  int
	}{
		{"unknown user", "ghost", 5},
		{"zero limit", "u1", 0},
		{"only user", "u1", 5},
		{"empty id", "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := env.eng.FindSimilarUsers(ctx, tt.userID, tt.limit)
			if got == nil || len(got) != 0 {
				t.Errorf("FindSimilarUsers() = %#v, want empty non-nil", got)
			}
		})
	}

	if got := env.eng.FindSimilarUsers(ctx, "ghost", 5); !reflect.DeepEqual(got, []SimilarUser{}) {
		t.Errorf("unknown user should not be created as a side effect: %v", got)
	}
	if env.eng.UserCount() != 1 {
		t.Errorf("UserCount() = %d, want 1", env.eng.UserCount())
	}
}
