// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package storage provides the durable key-value stores backing the
// personalization engine. The engine persists one JSON document per user
// plus a single automation blob, so the interface is deliberately small:
// load, save, delete and prefix listing.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// Store is a byte-oriented key-value store.
type Store interface {
	// Load returns the value stored at key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value at key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Path          string
	SyncWrites    bool
	Compression   bool
	RedisAddr     string
	RedisDB       int
	RedisPassword string
}

// Open constructs the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendBadger:
		return OpenBadger(cfg.Path, BadgerOptions{SyncWrites: cfg.SyncWrites, Compression: cfg.Compression})
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Password: cfg.RedisPassword})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
