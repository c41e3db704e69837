// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/paperlens/internal/schedule"
	"github.com/tomtom215/paperlens/internal/validation"
)

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return c.validateScheduler()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required when STORAGE_BACKEND=badger")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.SyncRecentSearches > c.Engine.MaxSearchHistory {
		return fmt.Errorf("SYNC_RECENT_SEARCHES (%d) cannot exceed MAX_SEARCH_HISTORY (%d)",
			c.Engine.SyncRecentSearches, c.Engine.MaxSearchHistory)
	}
	if c.Engine.SyncRecentActivities > c.Engine.MaxActivityHistory {
		return fmt.Errorf("SYNC_RECENT_ACTIVITIES (%d) cannot exceed MAX_ACTIVITY_HISTORY (%d)",
			c.Engine.SyncRecentActivities, c.Engine.MaxActivityHistory)
	}
	if _, err := schedule.LoadLocation(c.Engine.Timezone); err != nil {
		return fmt.Errorf("TZ: %w", err)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.AnchorCron == "" {
		return nil
	}
	if _, err := schedule.ParseCron(c.Scheduler.AnchorCron, nil); err != nil {
		return fmt.Errorf("SCHEDULER_ANCHOR_CRON: %w", err)
	}
	return nil
}

// Location returns the configured engine time zone.
func (c *Config) Location() *time.Location {
	loc, err := schedule.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
