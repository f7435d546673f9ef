// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package config loads and validates Filmatlas configuration with
// layered sources: built-in defaults, optional YAML file, environment
// variables (highest priority).
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the Filmatlas server.
type Config struct {
	Backend  BackendConfig  `koanf:"backend"`
	Server   ServerConfig   `koanf:"server"`
	Map      MapConfig      `koanf:"map"`
	Geocode  GeocodeConfig  `koanf:"geocode"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// BackendConfig describes the film-catalogue REST backend this service
// consumes (read-only; the one endpoint used is GET /api/photos/geo).
type BackendConfig struct {
	// URL is the catalogue API base, e.g. http://filmgallery:8080
	URL string `koanf:"url"`

	// UploadBase prefixes relative thumbnail paths. Defaults to URL.
	UploadBase string `koanf:"upload_base"`

	Timeout time.Duration `koanf:"timeout"`

	// FetchPerMinute rate-limits calls to the catalogue backend.
	FetchPerMinute int `koanf:"fetch_per_minute"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// MapConfig holds map/bridge behavior settings.
type MapConfig struct {
	// InitialLat/InitialLng parameterize the static renderer load; no
	// live data reaches a renderer before its MAP_READY.
	InitialLat float64 `koanf:"initial_lat"`
	InitialLng float64 `koanf:"initial_lng"`

	// RefreshInterval drives the periodic photo-set refetch.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// ReadyTimeout bounds how long a renderer may sit in AwaitingReady
	// before the session is flagged degraded. Zero disables the timer.
	// A late MAP_READY still completes the handshake either way.
	ReadyTimeout time.Duration `koanf:"ready_timeout"`
}

// GeocodeConfig holds reverse-geocode lookup settings. Disabled by
// default; when enabled, photo location names are backfilled from the
// lookup cache.
type GeocodeConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	CachePath string        `koanf:"cache_path"`
	Timeout   time.Duration `koanf:"timeout"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds CORS and rate-limit settings for the API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url is not a valid URL: %w", err)
	}
	if c.Backend.UploadBase != "" {
		if _, err := url.ParseRequestURI(c.Backend.UploadBase); err != nil {
			return fmt.Errorf("backend.upload_base is not a valid URL: %w", err)
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Map.RefreshInterval < 0 {
		return fmt.Errorf("map.refresh_interval must not be negative")
	}
	if c.Map.ReadyTimeout < 0 {
		return fmt.Errorf("map.ready_timeout must not be negative")
	}
	if c.Map.InitialLat < -90 || c.Map.InitialLat > 90 {
		return fmt.Errorf("map.initial_lat %v out of range [-90, 90]", c.Map.InitialLat)
	}
	if c.Map.InitialLng < -180 || c.Map.InitialLng > 180 {
		return fmt.Errorf("map.initial_lng %v out of range [-180, 180]", c.Map.InitialLng)
	}
	if c.Geocode.Enabled && c.Geocode.URL == "" {
		return fmt.Errorf("geocode.url is required when geocode is enabled")
	}
	return nil
}

// UploadBaseOrDefault returns the configured upload base, falling back
// to the backend URL.
func (c *Config) UploadBaseOrDefault() string {
	if c.Backend.UploadBase != "" {
		return c.Backend.UploadBase
	}
	return c.Backend.URL
}
