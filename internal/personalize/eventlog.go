// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package personalize

import "sync"

// BoundedLog is an insertion-ordered FIFO with a fixed capacity. Appending
// to a full log evicts the oldest entry. It is safe for concurrent use.
type BoundedLog[T any] struct {
	mu    sync.RWMutex
	items []T
	limit int
}

// NewBoundedLog creates a log holding at most limit entries. A limit below
// one is treated as one.
func NewBoundedLog[T any](limit int) *BoundedLog[T] {
	if limit < 1 {
		limit = 1
	}
	return &BoundedLog[T]{limit: limit}
}

// Append adds v as the newest entry.
func (l *BoundedLog[T]) Append(v T) {
	l.mu.Lock()
	l.items = appendBounded(l.items, v, l.limit)
	l.mu.Unlock()
}

// Replace resets the log to items, keeping only the newest entries that fit.
func (l *BoundedLog[T]) Replace(items []T) {
	if len(items) > l.limit {
		items = items[len(items)-l.limit:]
	}
	cp := make([]T, len(items))
	copy(cp, items)

	l.mu.Lock()
	l.items = cp
	l.mu.Unlock()
}

// Items returns a copy of every entry, oldest first.
func (l *BoundedLog[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Recent returns a copy of the newest n entries, oldest first.
func (l *BoundedLog[T]) Recent(n int) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return []T{}
	}
	start := 0
	if len(l.items) > n {
		start = len(l.items) - n
	}
	out := make([]T, len(l.items)-start)
	copy(out, l.items[start:])
	return out
}

// Len returns the number of entries.
func (l *BoundedLog[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Limit returns the capacity.
func (l *BoundedLog[T]) Limit() int { return l.limit }

// appendBounded appends v to s and drops the oldest entries beyond limit.
// The backing array is reallocated on eviction so callers holding the old
// slice never observe the shift.
func appendBounded[T any](s []T, v T, limit int) []T {
	if limit < 1 {
		limit = 1
	}
	if len(s) < limit {
		return append(s, v)
	}
	out := make([]T, 0, limit)
	out = append(out, s[len(s)-limit+1:]...)
	return append(out, v)
}
