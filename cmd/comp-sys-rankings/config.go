// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// setDefaults registers every configuration default. AutomaticEnv only
// resolves keys viper already knows, so each key needs a default here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.backup_dir", "data/backup")
	v.SetDefault("data.max_age", 30*24*time.Hour)
	v.SetDefault("data.read_attempts", 3)
	v.SetDefault("data.read_backoff", time.Second)
	v.SetDefault("data.url", "")

	v.SetDefault("object_store.endpoint", "")
	v.SetDefault("object_store.bucket", "")
	v.SetDefault("object_store.region", "")
	v.SetDefault("object_store.access_key_id", "")
	v.SetDefault("object_store.secret_access_key", "")
	v.SetDefault("object_store.use_ssl", true)
	v.SetDefault("object_store.current_prefix", "current/")
	v.SetDefault("object_store.backup_prefix", "backup/")

	v.SetDefault("ranking.proximity_pct", ranking.DefaultProximityPct)
	v.SetDefault("ranking.first_year", ranking.DefaultFirstYear)

	v.SetDefault("snapshot.path", "data/formatted/formatted_data.json")
	v.SetDefault("snapshot.index_path", "data/formatted/snapshot.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", time.Hour)
}

// loadConfig unmarshals v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parsing configuration: %w", err)
	}
	if c.Ranking.ProximityPct < 0 || c.Ranking.ProximityPct > 100 {
		return c, fmt.Errorf("ranking.proximity_pct must be within [0, 100], got %v", c.Ranking.ProximityPct)
	}
	return c, nil
}
