// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/paperlens/internal/models"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/paperlens/config.yaml",
	"/etc/paperlens/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8087,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Backend:     "badger",
			Path:        "/data/paperlens",
			SyncWrites:  true,
			Compression: true,
			RedisAddr:   "127.0.0.1:6379",
		},
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8000/api",
			Timeout: 10 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Engine: EngineConfig{
			MaxSearchHistory:         100,
			MaxActivityHistory:       200,
			MaxBehaviorEvents:        500,
			MaxRecommendationHistory: 50,
			SyncMinInterval:          60 * time.Second,
			SyncRecentSearches:       10,
			SyncRecentActivities:     20,
			LoadConcurrency:          8,
			Timezone:                 "Local",
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			SweepInterval:  time.Hour,
			AnchorCron:     "0 6 * * 1",
			UserDelay:      2 * time.Second,
			RefreshTimeout: 6 * time.Hour,
		},
		WeeklyMix: models.DefaultWeeklyMixConfig(),
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are list-valued keys that arrive as comma-separated env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",

	"storage_backend":     "storage.backend",
	"storage_path":        "storage.path",
	"storage_sync_writes": "storage.sync_writes",
	"storage_compression": "storage.compression",
	"redis_addr":          "storage.redis_addr",
	"redis_db":            "storage.redis_db",
	"redis_password":      "storage.redis_password",

	"backend_url":                   "backend.base_url",
	"backend_timeout":               "backend.timeout",
	"backend_breaker_max_requests":  "backend.breaker.max_requests",
	"backend_breaker_interval":      "backend.breaker.interval",
	"backend_breaker_timeout":       "backend.breaker.timeout",
	"backend_breaker_min_requests":  "backend.breaker.min_requests",
	"backend_breaker_failure_ratio": "backend.breaker.failure_ratio",

	"max_search_history":         "engine.max_search_history",
	"max_activity_history":       "engine.max_activity_history",
	"max_behavior_events":        "engine.max_behavior_events",
	"max_recommendation_history": "engine.max_recommendation_history",
	"sync_min_interval":          "engine.sync_min_interval",
	"sync_recent_searches":       "engine.sync_recent_searches",
	"sync_recent_activities":     "engine.sync_recent_activities",
	"load_concurrency":           "engine.load_concurrency",
	"tz":                         "engine.timezone",

	"scheduler_enabled":         "scheduler.enabled",
	"scheduler_sweep_interval":  "scheduler.sweep_interval",
	"scheduler_anchor_cron":     "scheduler.anchor_cron",
	"scheduler_user_delay":      "scheduler.user_delay",
	"scheduler_refresh_timeout": "scheduler.refresh_timeout",

	"weekly_mix_cadence":                     "weekly_mix.cadence",
	"weekly_mix_include_search_history":      "weekly_mix.include_search_history",
	"weekly_mix_include_network_activity":    "weekly_mix.include_network_activity",
	"weekly_mix_include_collection_activity": "weekly_mix.include_collection_activity",
	"weekly_mix_include_semantic_discovery":  "weekly_mix.include_semantic_discovery",
	"weekly_mix_max_recommendations":         "weekly_mix.max_recommendations",
	"weekly_mix_diversity_weight":            "weekly_mix.diversity_weight",
	"weekly_mix_novelty_weight":              "weekly_mix.novelty_weight",
	"weekly_mix_personalization_weight":      "weekly_mix.personalization_weight",

	"events_enabled":     "events.enabled",
	"events_buffer_size": "events.buffer_size",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
