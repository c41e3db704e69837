// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"fmt"
	"time"
)

// WeeklyAnchor fires once a week at a fixed local weekday and wall-clock time.
type WeeklyAnchor struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// MondayMorning is the default anchor for the weekly batch refresh: Monday 06:00.
func MondayMorning(loc *time.Location) WeeklyAnchor {
	return WeeklyAnchor{Weekday: time.Monday, Hour: 6, Minute: 0, Location: loc}
}

// Next returns the first anchor instant strictly after t. On the anchor
// weekday itself, a t before the anchor time targets the same day and a t at
// or past it targets the following week.
func (a WeeklyAnchor) Next(t time.Time) time.Time {
	loc := a.Location
	if loc == nil {
		loc = t.Location()
	}
	local := t.In(loc)

	days := (int(a.Weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days, a.Hour, a.Minute, 0, 0, loc)
	if !candidate.After(t) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+days+7, a.Hour, a.Minute, 0, 0, loc)
	}
	return candidate
}

func (a WeeklyAnchor) String() string {
	return fmt.Sprintf("weekly %s %02d:%02d", a.Weekday, a.Hour, a.Minute)
}

// NextWeeklyAnchor is the Monday 06:00 anchor computed in now's location.
func NextWeeklyAnchor(now time.Time) time.Time {
	return MondayMorning(now.Location()).Next(now)
}
