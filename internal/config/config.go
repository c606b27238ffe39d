// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/daylog-go/internal/location"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"DAYLOG_DB_PATH" envDefault:"./data/daylog.db"`
	ServerHost string `env:"DAYLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"DAYLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"DAYLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"DAYLOG_LOG_LEVEL" envDefault:"info"`

	// Location configuration. A static position takes priority; GeoClue is
	// tried when enabled; the GeoIP database serves as a per-request fallback.
	Lat            *float64 `env:"DAYLOG_LAT"`
	Lon            *float64 `env:"DAYLOG_LON"`
	GeoClueEnabled bool     `env:"DAYLOG_GEOCLUE" envDefault:"false"`
	GeoIPDBPath    string   `env:"DAYLOG_GEOIP_DB_PATH"` // Path to GeoLite2-City.mmdb file

	// Weather configuration
	WeatherBaseURL  string `env:"DAYLOG_WEATHER_BASE_URL"` // Empty = public Open-Meteo endpoint
	WeatherWarmCron string `env:"DAYLOG_WEATHER_WARM_CRON" envDefault:"@hourly"`

	// Cache configuration
	RedisURL     string `env:"DAYLOG_REDIS_URL"`                         // Optional Redis URL for the weather front cache
	CachePrefix  string `env:"DAYLOG_CACHE_PREFIX" envDefault:"daylog:"` // Redis key prefix
	CacheMaxSize int    `env:"DAYLOG_CACHE_MAX_SIZE" envDefault:"1000"`  // Max memory cache entries
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// StaticLocation returns the configured fixed position, or nil when either
// coordinate is unset.
func (c Config) StaticLocation() *location.Coordinates {
	if c.Lat == nil || c.Lon == nil {
		return nil
	}
	coords := location.Coordinates{Lat: *c.Lat, Lon: *c.Lon}.Round()
	return &coords
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if (cfg.Lat == nil) != (cfg.Lon == nil) {
		return nil, fmt.Errorf("DAYLOG_LAT and DAYLOG_LON must be set together")
	}

	return cfg, nil
}
