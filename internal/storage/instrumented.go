// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/paperlens/internal/metrics"
)

// instrumentedStore records latency and errors of every call.
type instrumentedStore struct {
	next Store
}

// Instrument wraps s so each operation is recorded in the store metrics.
// A missing key on Load is not counted as an error.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumentedStore); ok {
		return s
	}
	return &instrumentedStore{next: s}
}

func (s *instrumentedStore) Name() string { return s.next.Name() }

func (s *instrumentedStore) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := s.next.Load(ctx, key)
	recorded := err
	if errors.Is(err, ErrNotFound) {
		recorded = nil
	}
	metrics.RecordStoreOperation(s.next.Name(), "load", time.Since(start), recorded)
	return v, err
}

func (s *instrumentedStore) Save(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Save(ctx, key, value)
	metrics.RecordStoreOperation(s.next.Name(), "save", time.Since(start), err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	metrics.RecordStoreOperation(s.next.Name(), "delete", time.Since(start), err)
	return err
}

func (s *instrumentedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.Keys(ctx, prefix)
	metrics.RecordStoreOperation(s.next.Name(), "keys", time.Since(start), err)
	return keys, err
}

func (s *instrumentedStore) Close() error { return s.next.Close() }
