// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cron is a parsed 5-field cron expression: minute hour day-of-month month day-of-week.
//
// Supported syntax per field: *, n, n-m, a,b,c, */s, n-m/s and n/s.
// Day-of-week accepts 0-7 where both 0 and 7 are Sunday. When both day
// fields are restricted a day matches if either matches, as in classic cron.
type Cron struct {
	expr     string
	minutes  fieldSet
	hours    fieldSet
	doms     fieldSet
	months   fieldSet
	dows     fieldSet
	domStar  bool
	dowStar  bool
	Location *time.Location
}

type fieldSet map[int]struct{}

func (f fieldSet) has(v int) bool {
	_, ok := f[v]
	return ok
}

// ParseCron parses expr and evaluates it in loc (nil means UTC).
//
//	"0 6 * * 1"    Monday at 06:00
//	"*/15 * * * *" every 15 minutes
func ParseCron(expr string, loc *time.Location) (*Cron, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}
	if loc == nil {
		loc = time.UTC
	}

	specs := []struct {
		name     string
		min, max int
	}{
		{"minute", 0, 59},
		{"hour", 0, 23},
		{"day-of-month", 1, 31},
		{"month", 1, 12},
		{"day-of-week", 0, 7},
	}
	sets := make([]fieldSet, len(specs))
	for i, spec := range specs {
		set, err := parseField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", spec.name, err)
		}
		sets[i] = set
	}
	if sets[4].has(7) {
		delete(sets[4], 7)
		sets[4][0] = struct{}{}
	}

	return &Cron{
		expr:     expr,
		minutes:  sets[0],
		hours:    sets[1],
		doms:     sets[2],
		months:   sets[3],
		dows:     sets[4],
		domStar:  fields[2] == "*",
		dowStar:  fields[4] == "*",
		Location: loc,
	}, nil
}

// Next returns the first matching minute strictly after t, or the zero time
// if nothing matches within five years (for example "0 0 31 2 *").
func (c *Cron) Next(after time.Time) time.Time {
	loc := c.Location
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(5, 0, 0)

	for t.Before(limit) {
		if !c.months.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !c.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !c.hours.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !c.minutes.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

func (c *Cron) dayMatches(t time.Time) bool {
	dom := c.doms.has(t.Day())
	dow := c.dows.has(int(t.Weekday()))
	switch {
	case c.domStar && c.dowStar:
		return true
	case c.domStar:
		return dow
	case c.dowStar:
		return dom
	default:
		return dom || dow
	}
}

func (c *Cron) String() string { return c.expr }

func parseField(field string, minVal, maxVal int) (fieldSet, error) {
	set := fieldSet{}
	for _, part := range strings.Split(field, ",") {
		if err := parsePart(part, minVal, maxVal, set); err != nil {
			return nil, err
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%q matches no values", field)
	}
	return set, nil
}

func parsePart(part string, minVal, maxVal int, set fieldSet) error {
	rangePart, step := part, 1
	if i := strings.IndexByte(part, '/'); i >= 0 {
		s, err := strconv.Atoi(part[i+1:])
		if err != nil || s <= 0 {
			return fmt.Errorf("invalid step value: %s", part[i+1:])
		}
		rangePart, step = part[:i], s
	}

	lo, hi := minVal, maxVal
	switch {
	case rangePart == "*":
	case strings.Contains(rangePart, "-"):
		bounds := strings.SplitN(rangePart, "-", 2)
		var err error
		if lo, err = strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("invalid range start: %s", bounds[0])
		}
		if hi, err = strconv.Atoi(bounds[1]); err != nil {
			return fmt.Errorf("invalid range end: %s", bounds[1])
		}
	default:
		v, err := strconv.Atoi(rangePart)
		if err != nil {
			return fmt.Errorf("invalid value: %s", rangePart)
		}
		lo = v
		if step == 1 {
			hi = v
		}
	}

	if lo > hi || lo < minVal || hi > maxVal {
		return fmt.Errorf("value out of range: %s (allowed %d-%d)", rangePart, minVal, maxVal)
	}
	for v := lo; v <= hi; v += step {
		set[v] = struct{}{}
	}
	return nil
}

// ParseSchedule accepts either a 5-field cron expression or a Go duration
// ("1h", "30m") and returns the matching Schedule.
func ParseSchedule(spec string, loc *time.Location) (Schedule, error) {
	spec = strings.TrimSpace(spec)
	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %s", spec)
		}
		return Every(d), nil
	}
	return ParseCron(spec, loc)
}
