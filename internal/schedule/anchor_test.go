// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"testing"
	"time"
)

func TestNextWeeklyAnchor(t *testing.T) {
	t.Parallel()

	// 2026-01-05 is a Monday.
	mon := func(h, m int) time.Time { return time.Date(2026, 1, 5, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday before anchor", mon(5, 59), mon(6, 0)},
		{"monday after anchor", mon(6, 1), time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC)},
		{"monday exactly at anchor", mon(6, 0), time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 1, 7, 14, 30, 0, 0, time.UTC), time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC)},
		{"sunday late", time.Date(2026, 1, 11, 23, 59, 0, 0, time.UTC), time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC)},
		{"across month end", time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC), time.Date(2026, 2, 2, 6, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NextWeeklyAnchor(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextWeeklyAnchor(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestWeeklyAnchor_LocalTime(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	anchor := MondayMorning(loc)

	// Monday 03:30 UTC is 05:30 local, so the anchor is 30 minutes away.
	now := time.Date(2026, 1, 5, 3, 30, 0, 0, time.UTC)
	got := anchor.Next(now)
	if got.Sub(now) != 30*time.Minute {
		t.Errorf("expected anchor 30m later, got %v (%v)", got, got.Sub(now))
	}
	if got.In(loc).Hour() != 6 || got.In(loc).Weekday() != time.Monday {
		t.Errorf("anchor not at Monday 06:00 local: %v", got.In(loc))
	}
}

func TestWeeklyAnchor_ReschedulesWeekly(t *testing.T) {
	t.Parallel()

	anchor := MondayMorning(time.UTC)
	first := anchor.Next(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	second := anchor.Next(first)
	if second.Sub(first) != 7*24*time.Hour {
		t.Errorf("consecutive anchors %v apart, want 168h", second.Sub(first))
	}
}
