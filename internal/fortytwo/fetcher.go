// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package fortytwo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/auth"
	"github.com/tomtom215/intrasync/internal/cache"
	"github.com/tomtom215/intrasync/internal/httpclient"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/models"
)

const (
	// DefaultBaseURL is the public 42 Intra API.
	DefaultBaseURL = "https://api.intra.42.fr"
	// DefaultCampusID is used when neither the filter nor the config sets one.
	DefaultCampusID = 26
)

// Config controls the fetcher.
type Config struct {
	BaseURL     string
	CampusID    int
	CursusID    int
	PageSize    int
	PassingMark int
	// DetailCacheSize bounds the rule and scale memo.
	DetailCacheSize int
	DetailCacheTTL  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		PageSize:        100,
		PassingMark:     125,
		DetailCacheSize: 4096,
		DetailCacheTTL:  6 * time.Hour,
	}
}

// Filter narrows the session listing.
type Filter struct {
	// CampusID falls back to Config.CampusID, then DefaultCampusID.
	CampusID int
	// CursusID adds filter[cursus_id] when positive.
	CursusID int
	// Subscriptable adds filter[is_subscriptable] when non-nil.
	Subscriptable *bool
}

type ruleDetail struct {
	Kind        *string `json:"kind"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type scaleDetail struct {
	CorrectionNumber *int `json:"correction_number"`
}

// Fetcher reads project sessions. It is safe for concurrent use.
type Fetcher struct {
	http   *httpclient.Client
	auth   auth.Provider
	cfg    Config
	rules  *cache.LRU[int, ruleDetail]
	scales *cache.LRU[int, scaleDetail]
}

// NewFetcher creates a Fetcher. Zero config values fall back to DefaultConfig.
func NewFetcher(client *httpclient.Client, provider auth.Provider, cfg Config) *Fetcher {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.PassingMark <= 0 {
		cfg.PassingMark = def.PassingMark
	}
	if cfg.DetailCacheSize <= 0 {
		cfg.DetailCacheSize = def.DetailCacheSize
	}
	if cfg.DetailCacheTTL <= 0 {
		cfg.DetailCacheTTL = def.DetailCacheTTL
	}
	return &Fetcher{
		http:   client,
		auth:   provider,
		cfg:    cfg,
		rules:  cache.NewLRU[int, ruleDetail](cfg.DetailCacheSize, cfg.DetailCacheTTL),
		scales: cache.NewLRU[int, scaleDetail](cfg.DetailCacheSize, cfg.DetailCacheTTL),
	}
}

// Config returns the effective configuration.
func (f *Fetcher) Config() Config {
	return f.cfg
}

// DetailCacheStats reports the rule and scale memo counters.
func (f *Fetcher) DetailCacheStats() (rules, scales cache.Stats) {
	return f.rules.Stats(), f.scales.Stats()
}

// ListAll returns every session matching filter, walking pages from 1.
// Each call starts over, so a failed listing can simply be repeated.
func (f *Fetcher) ListAll(ctx context.Context, filter Filter) ([]models.ProjectSession, error) {
	campus := filter.CampusID
	if campus <= 0 {
		campus = f.cfg.CampusID
	}
	if campus <= 0 {
		campus = DefaultCampusID
	}

	base := url.Values{}
	base.Set("filter[campus_id]", strconv.Itoa(campus))
	if filter.CursusID > 0 {
		base.Set("filter[cursus_id]", strconv.Itoa(filter.CursusID))
	}
	if filter.Subscriptable != nil {
		base.Set("filter[is_subscriptable]", strconv.FormatBool(*filter.Subscriptable))
	}

	logging.Ctx(ctx).Info().Int("campus_id", campus).Msg("Listing project sessions")

	var all []models.ProjectSession
	err := paginate(ctx, f.cfg.PageSize, func(page int) (int, error) {
		q := cloneValues(base)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(f.cfg.PageSize))

		var items []models.ListingItem
		if err := f.get(ctx, "/v2/project_sessions", q, "project sessions", &items); err != nil {
			return 0, fmt.Errorf("list project sessions page %d: %w", page, err)
		}
		all = append(all, models.FromListingItems(items)...)

		logging.Ctx(ctx).Debug().Int("page", page).Int("count", len(items)).Msg("Fetched listing page")
		return len(items), nil
	})
	if err != nil {
		return nil, err
	}

	if all == nil {
		all = []models.ProjectSession{}
	}
	logging.Ctx(ctx).Info().Int("count", len(all)).Msg("Listed project sessions")
	return all, nil
}

// paginate calls fetch for pages 1.. until a page returns fewer than
// pageSize items.
func paginate(ctx context.Context, pageSize int, fetch func(page int) (int, error)) error {
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := fetch(page)
		if err != nil {
			return err
		}
		if n == 0 || n < pageSize {
			return nil
		}
	}
}

// get performs an authenticated GET and decodes the JSON body into v. A 401
// drops the provider's token once and repeats the request with a new one.
func (f *Fetcher) get(ctx context.Context, path string, query url.Values, resource string, v any) error {
	err := f.getOnce(ctx, path, query, resource, v)
	inv, ok := f.auth.(auth.Invalidator)
	if !ok || !errors.Is(err, apierr.ErrAuthentication) {
		return err
	}
	logging.Ctx(ctx).Warn().Str("path", path).Msg("Access token rejected, requesting a new one")
	inv.Invalidate()
	return f.getOnce(ctx, path, query, resource, v)
}

func (f *Fetcher) getOnce(ctx context.Context, path string, query url.Values, resource string, v any) error {
	headers, err := f.auth.Headers(ctx)
	if err != nil {
		return err
	}
	if c := CounterFromContext(ctx); c != nil {
		c.Record(path, query)
	}
	return f.http.JSON(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    f.cfg.BaseURL + path,
		Query:  query,
		Header: headers,
	}, resource, v)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
