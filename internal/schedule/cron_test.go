// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"testing"
	"time"
)

func TestParseCron_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
	}{
		{"too few fields", "0 6 * *"},
		{"too many fields", "0 6 * * 1 2026"},
		{"minute out of range", "60 6 * * 1"},
		{"hour out of range", "0 24 * * 1"},
		{"bad step", "*/0 * * * *"},
		{"reversed range", "0 10-5 * * *"},
		{"garbage", "a b c d e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseCron(tt.expr, nil); err == nil {
				t.Errorf("ParseCron(%q) expected error", tt.expr)
			}
		})
	}
}

func TestCron_Next(t *testing.T) {
	t.Parallel()

	utc := func(y int, mo time.Month, d, h, mi int) time.Time {
		return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		expr  string
		after time.Time
		want  time.Time
	}{
		{"weekly anchor same day", "0 6 * * 1", utc(2026, 1, 5, 5, 59), utc(2026, 1, 5, 6, 0)},
		{"weekly anchor next week", "0 6 * * 1", utc(2026, 1, 5, 6, 1), utc(2026, 1, 12, 6, 0)},
		{"weekly anchor exactly at", "0 6 * * 1", utc(2026, 1, 5, 6, 0), utc(2026, 1, 12, 6, 0)},
		{"every 15 minutes", "*/15 * * * *", utc(2026, 1, 5, 10, 7), utc(2026, 1, 5, 10, 15)},
		{"daily", "30 2 * * *", utc(2026, 1, 5, 3, 0), utc(2026, 1, 6, 2, 30)},
		{"sunday as 7", "0 0 * * 7", utc(2026, 1, 5, 0, 0), utc(2026, 1, 11, 0, 0)},
		{"first of month", "0 0 1 * *", utc(2026, 1, 15, 0, 0), utc(2026, 2, 1, 0, 0)},
		{"dom or dow", "0 0 10 * 1", utc(2026, 1, 6, 0, 0), utc(2026, 1, 10, 0, 0)},
		{"list of hours", "0 6,18 * * *", utc(2026, 1, 5, 7, 0), utc(2026, 1, 5, 18, 0)},
		{"range with step", "0 8-17/4 * * *", utc(2026, 1, 5, 9, 0), utc(2026, 1, 5, 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := ParseCron(tt.expr, time.UTC)
			if err != nil {
				t.Fatalf("ParseCron(%q): %v", tt.expr, err)
			}
			if got := c.Next(tt.after); !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestCron_NeverMatches(t *testing.T) {
	t.Parallel()

	c, err := ParseCron("0 0 31 2 *", time.UTC)
	if err != nil {
		t.Fatalf("ParseCron: %v", err)
	}
	if got := c.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); !got.IsZero() {
		t.Errorf("expected zero time for impossible date, got %v", got)
	}
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	s, err := ParseSchedule("1h", time.UTC)
	if err != nil {
		t.Fatalf("ParseSchedule(1h): %v", err)
	}
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := s.Next(base); !got.Equal(base.Add(time.Hour)) {
		t.Errorf("Every(1h).Next = %v", got)
	}

	s, err = ParseSchedule("0 6 * * 1", time.UTC)
	if err != nil {
		t.Fatalf("ParseSchedule(cron): %v", err)
	}
	if _, ok := s.(*Cron); !ok {
		t.Errorf("expected *Cron, got %T", s)
	}

	if _, err := ParseSchedule("-5m", time.UTC); err == nil {
		t.Error("expected error for negative interval")
	}
}
