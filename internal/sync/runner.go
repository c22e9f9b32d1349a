// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package sync

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/diff"
	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/store"
)

// DefaultProgressInterval logs enrichment progress every N records.
const DefaultProgressInterval = 10

// Fetcher is the upstream side of a run.
type Fetcher interface {
	ListAll(ctx context.Context, filter fortytwo.Filter) ([]models.ProjectSession, error)
	Enrich(ctx context.Context, s models.ProjectSession) (models.ProjectSession, fortytwo.Report, error)
}

// RunnerConfig controls a Runner.
type RunnerConfig struct {
	Filter fortytwo.Filter
	// ProgressInterval logs enrichment progress every N records.
	ProgressInterval int
}

// Runner wires fetcher, cache, diff engine and sync engine into the run
// modes.
type Runner struct {
	cfg     RunnerConfig
	fetcher Fetcher
	cache   store.Cache
	differ  *diff.Engine
	engine  *Engine
}

// NewRunner creates a Runner. fetcher may be nil for modes that do not
// fetch and engine may be nil for modes that do not send.
func NewRunner(cfg RunnerConfig, fetcher Fetcher, cache store.Cache, engine *Engine) *Runner {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		differ:  diff.NewEngine(cache),
		engine:  engine,
	}
}

// Run is a full run: send what is pending, then fetch, diff and sync.
func (r *Runner) Run(ctx context.Context, rc *RunContext) (Result, error) {
	if err := r.require(true, true); err != nil {
		return Result{}, err
	}

	restored, err := r.SyncPending(ctx, rc)
	if err != nil {
		return restored, err
	}

	sessions, res, err := r.fetch(ctx, rc)
	if err != nil {
		return restored.Merge(res), err
	}
	if len(sessions) == 0 {
		return restored.Merge(res), nil
	}

	dctx := rc.Phase(ctx, "diff")
	d, err := r.differ.Diff(dctx, sessions)
	if err != nil {
		return restored.Merge(res), apierr.Sync("diff", err)
	}
	res.Skipped += len(d.Skip)
	res.Errors += r.cachePending(dctx, d.Create)

	sctx := rc.Phase(ctx, "sync")
	ok, failed, err := r.engine.CreateMany(sctx, d.Create)
	res.Success += ok
	res.Errors += failed
	if err != nil {
		return restored.Merge(res), apierr.Sync("create", err)
	}

	ok, failed, err = r.engine.UpdateMany(sctx, d.Update)
	res.Success += ok
	res.Errors += failed
	if err != nil {
		return restored.Merge(res), apierr.Sync("update", err)
	}

	logging.Ctx(sctx).Info().
		Int("created", len(d.Create)).
		Int("updated", len(d.Update)).
		Int("skipped", len(d.Skip)).
		Str("result", res.String()).
		Msg("Sync phase complete")
	return restored.Merge(res), nil
}

// FetchOnly fetches and enriches sessions and caches new or unsent ones as
// pending. Nothing is sent downstream. Changed records that already exist
// downstream are left for the next full run's diff.
func (r *Runner) FetchOnly(ctx context.Context, rc *RunContext) (Result, error) {
	if err := r.require(true, false); err != nil {
		return Result{}, err
	}

	sessions, res, err := r.fetch(ctx, rc)
	if err != nil || len(sessions) == 0 {
		return res, err
	}

	dctx := rc.Phase(ctx, "diff")
	d, err := r.differ.Diff(dctx, sessions)
	if err != nil {
		return res, apierr.Sync("diff", err)
	}

	failed := r.cachePending(dctx, d.Create)
	res.Errors += failed
	res.Success += len(d.Create) - failed
	res.Skipped += len(d.Skip) + len(d.Update)

	if len(d.Update) > 0 {
		logging.Ctx(dctx).Info().Int("count", len(d.Update)).
			Msg("Changed records already exist downstream and will be updated by the next full run")
	}
	return res, nil
}

// SyncPending sends every pending record. Records sent successfully are
// marked restored in rc so the rest of the run leaves them alone.
func (r *Runner) SyncPending(ctx context.Context, rc *RunContext) (Result, error) {
	if err := r.require(false, true); err != nil {
		return Result{}, err
	}
	ctx = rc.Phase(ctx, "restore")
	log := logging.Ctx(ctx)

	pending, err := r.cache.Pending(ctx)
	if err != nil {
		return Result{}, apierr.Sync("read pending records", err)
	}
	res := Result{Total: len(pending)}
	if len(pending) == 0 {
		log.Info().Msg("No pending records to restore")
		return res, nil
	}
	log.Info().Int("count", len(pending)).Msg("Restoring pending records from cache")

	var creates []models.ProjectSession
	var updates []diff.UpdateItem
	for _, s := range pending {
		remote, found, err := r.cache.RemoteObjectID(ctx, s.ID)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("session_id", s.ID).Msg("Remote id lookup failed, creating")
			creates = append(creates, s)
		case found:
			updates = append(updates, diff.UpdateItem{Session: s, RemoteObjectID: remote})
		default:
			creates = append(creates, s)
		}
	}

	ok, failed, err := r.engine.CreateMany(ctx, creates)
	res.Success += ok
	res.Errors += failed
	if err != nil {
		return res, apierr.Sync("restore create", err)
	}
	ok, failed, err = r.engine.UpdateMany(ctx, updates)
	res.Success += ok
	res.Errors += failed
	if err != nil {
		return res, apierr.Sync("restore update", err)
	}

	for _, s := range pending {
		if e, found, err := r.cache.Entry(ctx, s.ID); err == nil && found && e.Status == store.StatusSent {
			rc.MarkRestored(s.ID)
		}
	}
	log.Info().Int("success", res.Success).Int("errors", res.Errors).Int("restored", len(rc.Restored())).
		Msg("Restore complete")
	return res, nil
}

// fetch lists and enriches sessions. Records restored earlier in the run
// are counted as skipped and dropped.
func (r *Runner) fetch(ctx context.Context, rc *RunContext) ([]models.ProjectSession, Result, error) {
	ctx = rc.Phase(ctx, "fetch")
	log := logging.Ctx(ctx)

	listed, err := r.fetcher.ListAll(ctx, r.cfg.Filter)
	if err != nil {
		log.Error().Err(err).Msg("Listing project sessions failed")
		return nil, Result{}, apierr.Sync("list project sessions", err)
	}
	res := Result{Total: len(listed)}
	metrics.RecordsFetchedTotal.Add(float64(len(listed)))
	if len(listed) == 0 {
		log.Warn().Msg("No project sessions returned")
		return nil, res, nil
	}
	log.Info().Int("count", len(listed)).Msg("Fetched project sessions, enriching")

	out := make([]models.ProjectSession, 0, len(listed))
	for i, s := range listed {
		if rc.IsRestored(s.ID) {
			res.Skipped++
			log.Debug().Int("session_id", s.ID).Msg("Already restored in this run, skipping")
			continue
		}

		enriched, report, err := r.fetcher.Enrich(ctx, s)
		switch {
		case err == nil:
			if !report.OK() {
				log.Debug().Int("session_id", s.ID).Strs("degraded", report.Categories()).Msg("Enrichment degraded")
			}
			out = append(out, enriched)
		case abort(ctx, err):
			return nil, res, apierr.Sync(fmt.Sprintf("enrich session %d", s.ID), err)
		default:
			res.Errors++
			log.Warn().Err(err).Int("session_id", s.ID).Str("project", s.ProjectName).
				Msg("Enrichment failed, keeping base record")
			out = append(out, s)
		}

		if (i+1)%r.cfg.ProgressInterval == 0 {
			log.Info().Int("done", i+1).Int("total", len(listed)).Str("project", s.ProjectName).
				Msg("Enrichment progress")
		}
	}

	log.Info().Int("count", len(out)).Int("requests", rc.Requests.Total()).Msg("Fetch phase complete")
	return out, res, nil
}

// cachePending writes records about to be created as pending so a crash or
// failed send leaves them for the next restore. It returns the number of
// failed writes.
func (r *Runner) cachePending(ctx context.Context, sessions []models.ProjectSession) int {
	failed := 0
	for _, s := range sessions {
		if err := r.cache.Save(ctx, s, ""); err != nil {
			failed++
			logging.CtxErr(ctx, err).Int("session_id", s.ID).Msg("Caching record failed")
		}
	}
	return failed
}

func (r *Runner) require(fetcher, engine bool) error {
	if r.cache == nil {
		return apierr.Newf(apierr.KindConfiguration, "runner", "no cache configured")
	}
	if fetcher && r.fetcher == nil {
		return apierr.Newf(apierr.KindConfiguration, "runner", "no 42 fetcher configured")
	}
	if engine && r.engine == nil {
		return apierr.Newf(apierr.KindConfiguration, "runner", "no Anytype client configured")
	}
	return nil
}

// ShowCache writes a read-only report of the cache to w.
func (r *Runner) ShowCache(ctx context.Context, w io.Writer) error {
	if err := r.require(false, false); err != nil {
		return err
	}
	st, err := r.cache.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}
	entries, err := r.cache.All(ctx)
	if err != nil {
		return fmt.Errorf("read cache entries: %w", err)
	}

	fmt.Fprintf(w, "Cached records: %d (pending: %d, sent: %d)\n", st.Total, st.Pending, st.Sent)
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tSTATUS\tREMOTE ID\tUPDATED")
	for _, e := range entries {
		remote := e.RemoteObjectID
		if remote == "" {
			remote = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.Session.ID, e.Session.ProjectName, e.Status, remote, e.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
