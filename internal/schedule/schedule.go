// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package schedule computes when background jobs fire and runs them.
//
// Time math is kept pure: a Schedule only answers "what is the next instant
// strictly after t". Runner owns the "sleep until then, run, recompute"
// loop and reads time exclusively through a Clock, so tests drive it with
// FakeClock instead of waiting.
package schedule

import (
	"fmt"
	"time"
)

// Schedule yields the next activation strictly after the given instant.
// A zero time means the schedule never fires again.
type Schedule interface {
	Next(after time.Time) time.Time
}

// Every fires at a fixed interval measured from the previous computation.
type Every time.Duration

// Next returns after + d.
func (e Every) Next(after time.Time) time.Time {
	if e <= 0 {
		return time.Time{}
	}
	return after.Add(time.Duration(e))
}

func (e Every) String() string { return "every " + time.Duration(e).String() }

// LoadLocation resolves an IANA zone name, treating "" and "Local" as the
// process location.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
