// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/intrasync/internal/apierr"
)

const (
	// ConfigPathEnvVar overrides the config file search.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DefaultEnvFile is read before the environment when present.
	DefaultEnvFile = ".env"

	appName = "intrasync"
)

// DefaultConfigPaths lists the config files searched in order when neither
// --config nor CONFIG_PATH is set. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	filepath.Join(xdg.ConfigHome, appName, "config.yaml"),
}

// DefaultCachePath is the cache location under the XDG data directory.
func DefaultCachePath() string {
	return filepath.Join(xdg.DataHome, appName, "cache.db")
}

// DefaultTokenFile is where the 42 access token is persisted.
func DefaultTokenFile() string {
	return filepath.Join(xdg.DataHome, appName, "token.json")
}

// defaultConfig returns the built-in defaults, applied before any file or
// environment source.
func defaultConfig() *Config {
	return &Config{
		FortyTwo: FortyTwoConfig{
			APIURL:            "https://api.intra.42.fr",
			TokenFile:         DefaultTokenFile(),
			CampusID:          26,
			CursusID:          0, // no cursus filter
			OnlySubscriptable: true,
			PageSize:          100,
			PassingMark:       125,
			DetailCacheSize:   4096,
			DetailCacheTTL:    6 * time.Hour,
		},
		Anytype: AnytypeConfig{
			APIURL:  "http://localhost:3030",
			Version: "2025-05-20",
		},
		HTTP: HTTPConfig{
			MaxRetries: 3,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   60 * time.Second,
			Timeout:    30 * time.Second,
			UserAgent:  appName,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			Threshold:         10,
		},
		Cache: CacheConfig{
			Backend: "sqlite",
			Path:    DefaultCachePath(),
		},
		Sync: SyncConfig{
			BatchSize:        50,
			ProgressInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Job: appName,
		},
	}
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML path. It must exist when set.
	ConfigFile string
	// EnvFile is a dotenv file read into the environment before the env
	// layer. Defaults to DefaultEnvFile; a missing file is ignored.
	EnvFile string
	// Overrides are koanf paths set last, typically from command-line flags.
	Overrides map[string]any
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and overrides, in increasing priority, then validates it.
// Credentials are not checked here; see RequireFortyTwo and RequireAnytype.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := resolveConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, apierr.New(apierr.KindConfiguration, "load config",
				fmt.Errorf("config file %s: %w", configPath, err))
		}
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, apierr.New(apierr.KindConfiguration, "load config",
			fmt.Errorf("failed to unmarshal configuration: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigFile returns the explicit path, CONFIG_PATH, or the first
// default path that exists. An explicit path that does not exist is an error.
func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", apierr.New(apierr.KindConfiguration, "load config", err)
		}
		return explicit, nil
	}
	return findConfigFile(), nil
}

// findConfigFile returns the first config file found, or "".
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

// loadEnvFile merges a dotenv file into the process environment. Variables
// already set are left untouched.
func loadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return apierr.New(apierr.KindConfiguration, "load env file", fmt.Errorf("%s: %w", path, err))
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// 42 Intra
	"ft_uid":             "fortytwo.client_id",
	"ft_secret":          "fortytwo.client_secret",
	"fortytwo_api_url":   "fortytwo.api_url",
	"fortytwo_token_url": "fortytwo.token_url",
	"fortytwo_campus_id": "fortytwo.campus_id",
	"fortytwo_cursus_id": "fortytwo.cursus_id",
	"token_file":         "fortytwo.token_file",

	// Anytype
	"anytype_api_url":    "anytype.api_url",
	"anytype_api_key":    "anytype.api_key",
	"anytype_space_id":   "anytype.space_id",
	"anytype_objects_id": "anytype.objects_id",
	"anytype_version":    "anytype.version",

	// HTTP retry policy and pacing
	"max_retries":          "http.max_retries",
	"base_delay":           "http.base_delay",
	"max_delay":            "http.max_delay",
	"http_timeout":         "http.timeout",
	"requests_per_second":  "rate_limit.requests_per_second",
	"rate_limit_threshold": "rate_limit.threshold",

	// Cache
	"cache_db_path": "cache.path",
	"cache_backend": "cache.backend",

	// Sync
	"batch_size":            "sync.batch_size",
	"detail_fetch_interval": "sync.progress_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
	"log_file":   "logging.file",

	// Metrics
	"pushgateway_url": "metrics.pushgateway_url",
	"pushgateway_job": "metrics.job",
}

// envTransformFunc maps an environment variable to its koanf path.
// Unmapped and empty variables return "" and are skipped, so unrelated
// environment entries never reach the config.
//
// Examples:
//   - FT_UID -> fortytwo.client_id
//   - ANYTYPE_SPACE_ID -> anytype.space_id
//   - DETAIL_FETCH_INTERVAL -> sync.progress_interval
func envTransformFunc(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envMappings[strings.ToLower(key)], value
}
