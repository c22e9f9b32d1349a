// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/intrasync/internal/anytype"
	"github.com/tomtom215/intrasync/internal/auth"
	"github.com/tomtom215/intrasync/internal/config"
	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/httpclient"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/planner"
	"github.com/tomtom215/intrasync/internal/ratelimit"
	"github.com/tomtom215/intrasync/internal/store"
	"github.com/tomtom215/intrasync/internal/sync"
)

const pushTimeout = 10 * time.Second

// Deps replaces the network clients. Nil fields are built from the config.
type Deps struct {
	Fetcher    sync.Fetcher
	Downstream sync.Downstream
}

// setup loads the config and initializes logging. The log file, if any,
// stays open until logging.Close.
func setup(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
		Overrides:  opts.overrides(cmd),
	})
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.Log()); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, nil
}

func openCache(cfg *config.Config) (store.Cache, error) {
	c, err := store.Open(cfg.Store())
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

// newFetcher builds the paced, retrying 42 API fetcher.
func newFetcher(cfg *config.Config) (*fortytwo.Fetcher, error) {
	hcfg := cfg.HTTPClient("fortytwo")
	creds, err := auth.NewClientCredentials(cfg.Credentials(),
		auth.WithTokenHTTPClient(&http.Client{Timeout: hcfg.Timeout}))
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.New(cfg.Limiter(), ratelimit.WithName("fortytwo"))
	return fortytwo.NewFetcher(httpclient.New(hcfg, limiter), creds, cfg.Fetcher()), nil
}

// newDownstream builds the Anytype client. It does not retry: a failed bulk
// create falls back to per-object creates, and the breaker stops the run
// from hammering a broken endpoint.
func newDownstream(cfg *config.Config) *anytype.Client {
	hcfg := cfg.HTTPClient("anytype")
	hcfg.MaxRetries = 0
	return anytype.NewClient(cfg.AnytypeClient(), httpclient.New(hcfg, nil))
}

// runSync executes one of the run, fetch and sync-cache modes.
func runSync(cmd *cobra.Command, opts *RootOptions, mode string) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	needFetch := mode == sync.ModeRun || mode == sync.ModeFetch
	needSend := mode == sync.ModeRun || mode == sync.ModeSyncCache
	if needFetch && (opts.deps == nil || opts.deps.Fetcher == nil) {
		if err := cfg.RequireFortyTwo(); err != nil {
			return err
		}
	}
	if needSend && (opts.deps == nil || opts.deps.Downstream == nil) {
		if err := cfg.RequireAnytype(); err != nil {
			return err
		}
	}

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close cache")
		}
	}()

	var (
		fetcher sync.Fetcher
		engine  *sync.Engine
	)
	if needFetch {
		if fetcher, err = buildFetcher(cfg, opts.deps); err != nil {
			return err
		}
	}
	if needSend {
		engine = sync.NewEngine(buildDownstream(cfg, opts.deps), cache, cfg.Sync.BatchSize)
	}

	runner := sync.NewRunner(sync.RunnerConfig{
		Filter:           cfg.Filter(),
		ProgressInterval: cfg.Sync.ProgressInterval,
	}, fetcher, cache, engine)

	rc := sync.NewRunContext(mode)
	ctx := rc.Attach(cmd.Context())
	logging.Ctx(ctx).Info().
		Str("mode", mode).
		Str("cache", cfg.Cache.Path).
		Str("backend", cfg.Cache.Backend).
		Msg("Run started")

	var res sync.Result
	switch mode {
	case sync.ModeRun:
		res, err = runner.Run(ctx, rc)
	case sync.ModeFetch:
		res, err = runner.FetchOnly(ctx, rc)
	case sync.ModeSyncCache:
		res, err = runner.SyncPending(ctx, rc)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	finish(ctx, rc, res, err)
	if opts.PushMetrics {
		pushMetrics(cfg)
	}

	if err != nil {
		return err
	}
	if res.HasErrors() {
		return NewExitError(ExitFailure, fmt.Sprintf("%s finished with %d errors", mode, res.Errors))
	}
	return nil
}

func buildFetcher(cfg *config.Config, deps *Deps) (sync.Fetcher, error) {
	if deps != nil && deps.Fetcher != nil {
		return deps.Fetcher, nil
	}
	return newFetcher(cfg)
}

func buildDownstream(cfg *config.Config, deps *Deps) sync.Downstream {
	if deps != nil && deps.Downstream != nil {
		return deps.Downstream
	}
	return newDownstream(cfg)
}

// finish records run metrics and logs the summary line.
func finish(ctx context.Context, rc *sync.RunContext, res sync.Result, err error) {
	metrics.RecordRun(rc.Mode, rc.Elapsed(), res.Errors)

	logger := logging.Ctx(ctx)
	rc.Requests.Log(logger)
	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int("total", res.Total).
		Int("success", res.Success).
		Int("errors", res.Errors).
		Int("skipped", res.Skipped).
		Int("api_requests", rc.Requests.Total()).
		Dur("elapsed", rc.Elapsed()).
		Msg("Run finished: " + res.String())
}

func pushMetrics(cfg *config.Config) {
	if cfg.Metrics.PushgatewayURL == "" {
		logging.Warn().Msg("--push-metrics given but metrics.pushgateway_url is not set")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		logging.Warn().Err(err).Msg("Failed to push metrics")
		return
	}
	logging.Debug().Str("url", cfg.Metrics.PushgatewayURL).Msg("Metrics pushed")
}

// showCache prints the cache report to the command's output.
func showCache(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	return sync.NewRunner(sync.RunnerConfig{}, nil, cache, nil).ShowCache(cmd.Context(), cmd.OutOrStdout())
}

// plan prints the request plan for the cached sessions.
func plan(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	entries, err := cache.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	if len(entries) == 0 {
		logging.Warn().Msg("Cache is empty; only the listing requests can be planned")
	}
	sessions := make([]models.ProjectSession, 0, len(entries))
	for _, e := range entries {
		sessions = append(sessions, e.Session)
	}

	p := planner.Plan(sessions, cfg.FortyTwo.CampusID)
	logging.Info().Int("sessions", len(sessions)).Int("requests", len(p)).Msg("Request plan")
	return planner.Print(cmd.OutOrStdout(), p)
}
