// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package config

import (
	"os"
	"time"

	"github.com/tomtom215/intrasync/internal/anytype"
	"github.com/tomtom215/intrasync/internal/auth"
	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/httpclient"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/ratelimit"
	"github.com/tomtom215/intrasync/internal/store"
)

// Config holds all settings for one intrasync invocation.
//
// Loading order (Koanf v2):
//  1. Defaults from defaultConfig
//  2. Optional YAML config file
//  3. .env file, then environment variables
//  4. Command-line overrides
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	FortyTwo  FortyTwoConfig  `koanf:"fortytwo"`
	Anytype   AnytypeConfig   `koanf:"anytype"`
	HTTP      HTTPConfig      `koanf:"http"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
	Sync      SyncConfig      `koanf:"sync"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// FortyTwoConfig holds the 42 Intra API credentials and listing filter.
//
// Environment Variables:
//   - FT_UID, FT_SECRET: OAuth2 client credentials
//   - FORTYTWO_API_URL: API base URL (default: https://api.intra.42.fr)
//   - FORTYTWO_CAMPUS_ID: campus filter (default: 26)
//   - FORTYTWO_CURSUS_ID: cursus filter (default: unset)
//   - TOKEN_FILE: access token persistence path
type FortyTwoConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	APIURL       string `koanf:"api_url" validate:"required,url"`
	TokenURL     string `koanf:"token_url" validate:"omitempty,url"`
	TokenFile    string `koanf:"token_file"`
	CampusID     int    `koanf:"campus_id" validate:"gte=0"`
	CursusID     int    `koanf:"cursus_id" validate:"gte=0"`
	// OnlySubscriptable adds filter[is_subscriptable]=true to the listing.
	OnlySubscriptable bool          `koanf:"only_subscriptable"`
	PageSize          int           `koanf:"page_size" validate:"min=1,max=100"`
	PassingMark       int           `koanf:"passing_mark" validate:"gte=0"`
	DetailCacheSize   int           `koanf:"detail_cache_size" validate:"gte=1"`
	DetailCacheTTL    time.Duration `koanf:"detail_cache_ttl"`
}

// AnytypeConfig holds the Anytype API connection.
//
// Environment Variables:
//   - ANYTYPE_API_URL: API base URL (default: http://localhost:3030)
//   - ANYTYPE_API_KEY: bearer token
//   - ANYTYPE_SPACE_ID: target space
//   - ANYTYPE_OBJECTS_ID: optional collection new objects are filed into
//   - ANYTYPE_VERSION: Anytype-Version header
type AnytypeConfig struct {
	APIURL    string `koanf:"api_url" validate:"required,url"`
	APIKey    string `koanf:"api_key"`
	SpaceID   string `koanf:"space_id"`
	ObjectsID string `koanf:"objects_id"`
	Version   string `koanf:"version"`
}

// HTTPConfig is the shared retry policy.
type HTTPConfig struct {
	MaxRetries int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
	Timeout    time.Duration `koanf:"timeout"`
	UserAgent  string        `koanf:"user_agent"`
}

// RateLimitConfig paces calls to the 42 API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Threshold         int     `koanf:"threshold" validate:"gte=0"`
}

// CacheConfig selects the local cache backend.
type CacheConfig struct {
	Backend string `koanf:"backend" validate:"oneof=sqlite badger duckdb"`
	Path    string `koanf:"path" validate:"required"`
}

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	BatchSize int `koanf:"batch_size" validate:"min=1,max=1000"`
	// ProgressInterval logs a progress line every N enriched records.
	ProgressInterval int `koanf:"progress_interval" validate:"gte=1"`
}

// LoggingConfig mirrors logging.Config for the loader.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}

// MetricsConfig configures the optional Pushgateway push after a run.
type MetricsConfig struct {
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job"`
}

// Fetcher returns the fortytwo fetcher settings.
func (c *Config) Fetcher() fortytwo.Config {
	return fortytwo.Config{
		BaseURL:         c.FortyTwo.APIURL,
		CampusID:        c.FortyTwo.CampusID,
		CursusID:        c.FortyTwo.CursusID,
		PageSize:        c.FortyTwo.PageSize,
		PassingMark:     c.FortyTwo.PassingMark,
		DetailCacheSize: c.FortyTwo.DetailCacheSize,
		DetailCacheTTL:  c.FortyTwo.DetailCacheTTL,
	}
}

// Filter returns the session listing filter.
func (c *Config) Filter() fortytwo.Filter {
	f := fortytwo.Filter{
		CampusID: c.FortyTwo.CampusID,
		CursusID: c.FortyTwo.CursusID,
	}
	if c.FortyTwo.OnlySubscriptable {
		subscriptable := true
		f.Subscriptable = &subscriptable
	}
	return f
}

// Credentials returns the OAuth2 client-credentials settings.
func (c *Config) Credentials() auth.CredentialsConfig {
	return auth.CredentialsConfig{
		ClientID:     c.FortyTwo.ClientID,
		ClientSecret: c.FortyTwo.ClientSecret,
		TokenURL:     c.FortyTwo.TokenURL,
		TokenFile:    c.FortyTwo.TokenFile,
	}
}

// HTTPClient returns the retry policy for the named client.
func (c *Config) HTTPClient(name string) httpclient.Config {
	return httpclient.Config{
		Name:       name,
		MaxRetries: c.HTTP.MaxRetries,
		BaseDelay:  c.HTTP.BaseDelay,
		MaxDelay:   c.HTTP.MaxDelay,
		Timeout:    c.HTTP.Timeout,
		UserAgent:  c.HTTP.UserAgent,
	}
}

// Limiter returns the 42 API pacing settings.
func (c *Config) Limiter() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: c.RateLimit.RequestsPerSecond,
		Threshold:         c.RateLimit.Threshold,
		BaseDelay:         c.HTTP.BaseDelay,
	}
}

// AnytypeClient returns the Anytype client settings.
func (c *Config) AnytypeClient() anytype.Config {
	return anytype.Config{
		BaseURL:   c.Anytype.APIURL,
		APIKey:    c.Anytype.APIKey,
		SpaceID:   c.Anytype.SpaceID,
		ObjectsID: c.Anytype.ObjectsID,
		Version:   c.Anytype.Version,
	}
}

// Store returns the cache settings.
func (c *Config) Store() store.Config {
	return store.Config{Backend: c.Cache.Backend, Path: c.Cache.Path}
}

// Log returns the logger settings. Output is stderr.
func (c *Config) Log() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Caller:    c.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		File:      c.Logging.File,
	}
}
