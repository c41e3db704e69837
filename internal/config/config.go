// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package config loads PaperLens configuration.
//
// Sources are layered with koanf, lowest priority first:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/paperlens/config.yaml)
//  3. Environment variables listed in envMappings
//
// The result is validated once with struct tags and cross-field checks;
// a Config returned by Load is always usable as-is.
package config

import (
	"time"

	"github.com/tomtom215/paperlens/internal/models"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig           `koanf:"server"`
	Security  SecurityConfig         `koanf:"security"`
	Storage   StorageConfig          `koanf:"storage"`
	Backend   BackendConfig          `koanf:"backend"`
	Engine    EngineConfig           `koanf:"engine"`
	Scheduler SchedulerConfig        `koanf:"scheduler"`
	WeeklyMix models.WeeklyMixConfig `koanf:"weekly_mix"`
	Events    EventsConfig           `koanf:"events"`
	Logging   LoggingConfig          `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SecurityConfig configures CORS and request rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StorageConfig selects the profile store backend.
type StorageConfig struct {
	// Backend is badger, redis or memory.
	Backend       string `koanf:"backend" validate:"oneof=badger redis memory"`
	Path          string `koanf:"path"`
	SyncWrites    bool   `koanf:"sync_writes"`
	Compression   bool   `koanf:"compression"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0,lte=15"`
	RedisPassword string `koanf:"redis_password"`
}

// BreakerConfig tunes the circuit breaker guarding backend calls.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// BackendConfig configures the recommendation backend client.
type BackendConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// EngineConfig bounds the per-user logs and the backend sync limiter.
type EngineConfig struct {
	MaxSearchHistory         int           `koanf:"max_search_history" validate:"gte=1"`
	MaxActivityHistory       int           `koanf:"max_activity_history" validate:"gte=1"`
	MaxBehaviorEvents        int           `koanf:"max_behavior_events" validate:"gte=1"`
	MaxRecommendationHistory int           `koanf:"max_recommendation_history" validate:"gte=1"`
	SyncMinInterval          time.Duration `koanf:"sync_min_interval" validate:"gte=0"`
	SyncRecentSearches       int           `koanf:"sync_recent_searches" validate:"gte=1"`
	SyncRecentActivities     int           `koanf:"sync_recent_activities" validate:"gte=1"`
	LoadConcurrency          int           `koanf:"load_concurrency" validate:"gte=1"`
	Timezone                 string        `koanf:"timezone"`
}

// SchedulerConfig configures the background refresh jobs.
type SchedulerConfig struct {
	Enabled bool `koanf:"enabled"`

	// SweepInterval is how often every user is checked for staleness.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// AnchorCron is the weekly batch schedule. Empty means Monday 06:00.
	AnchorCron string `koanf:"anchor_cron"`

	// UserDelay is the pause between users in sweeps and batches.
	UserDelay time.Duration `koanf:"user_delay" validate:"gte=0"`

	// RefreshTimeout bounds one complete sweep or batch.
	RefreshTimeout time.Duration `koanf:"refresh_timeout" validate:"gte=0"`
}

// EventsConfig configures the in-process notification bus.
type EventsConfig struct {
	Enabled    bool  `koanf:"enabled"`
	BufferSize int64 `koanf:"buffer_size" validate:"gte=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
