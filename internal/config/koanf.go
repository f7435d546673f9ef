// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

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
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"filmatlas.yaml",
	"config/filmatlas.yaml",
	"/etc/filmatlas/config.yaml",
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout:        15 * time.Second,
			FetchPerMinute: 30,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8090,
			Timeout:     30 * time.Second,
			Environment: "production",
		},
		Map: MapConfig{
			InitialLat:      20,
			InitialLng:      0,
			RefreshInterval: 5 * time.Minute,
			ReadyTimeout:    0, // disabled unless configured
		},
		Geocode: GeocodeConfig{
			Enabled:   false,
			CachePath: "/data/geocode",
			Timeout:   10 * time.Second,
			CacheTTL:  30 * 24 * time.Hour,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// BACKEND_URL -> backend.url, HTTP_PORT -> server.port, etc.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
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

// findConfigFile returns the first existing config file path, or empty
// string if none is found.
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

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when sourced from environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		// Already a slice when it came from the YAML file.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
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
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unrecognized variables are discarded so unrelated environment
// noise never leaks into the config tree.
//
// Examples:
//   - BACKEND_URL -> backend.url
//   - HTTP_PORT -> server.port
//   - MAP_REFRESH_INTERVAL -> map.refresh_interval
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"backend_url":              "backend.url",
		"backend_upload_base":      "backend.upload_base",
		"backend_timeout":          "backend.timeout",
		"backend_fetch_per_minute": "backend.fetch_per_minute",

		"http_host":   "server.host",
		"http_port":   "server.port",
		"environment": "server.environment",

		"map_initial_lat":      "map.initial_lat",
		"map_initial_lng":      "map.initial_lng",
		"map_refresh_interval": "map.refresh_interval",
		"map_ready_timeout":    "map.ready_timeout",

		"geocode_enabled":    "geocode.enabled",
		"geocode_url":        "geocode.url",
		"geocode_cache_path": "geocode.cache_path",
		"geocode_timeout":    "geocode.timeout",
		"geocode_cache_ttl":  "geocode.cache_ttl",

		"cors_origins":        "security.cors_origins",
		"rate_limit_reqs":     "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"rate_limit_disabled": "security.rate_limit_disabled",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
