// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package diff classifies freshly fetched sessions against the cache into
// creates, updates and skips.
package diff

import (
	"context"

	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/store"
)

// Lookup is the part of the cache the engine reads.
type Lookup interface {
	Entry(ctx context.Context, id int) (store.Entry, bool, error)
}

// UpdateItem is a changed record together with its downstream object id.
type UpdateItem struct {
	Session        models.ProjectSession
	RemoteObjectID string
}

// Result is the classification of one fetched batch. Every input record
// lands in exactly one of Create, Update or Skip, in input order.
type Result struct {
	Create []models.ProjectSession
	Update []UpdateItem
	Skip   []models.ProjectSession
	// Anomalies counts changed records that were cached without a remote id.
	Anomalies int
}

// Total returns the number of classified records.
func (r Result) Total() int {
	return len(r.Create) + len(r.Update) + len(r.Skip)
}

// Engine compares fetched records with cached ones.
type Engine struct {
	cache Lookup
}

// NewEngine creates a diff engine over cache.
func NewEngine(cache Lookup) *Engine {
	return &Engine{cache: cache}
}

// Diff classifies fetched. Lookup and comparison errors never fail the
// pass; the record is treated as changed. The only error returned is a
// cancelled context.
func (e *Engine) Diff(ctx context.Context, fetched []models.ProjectSession) (Result, error) {
	log := logging.Ctx(ctx)
	var res Result

	for _, s := range fetched {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		cached, found, err := e.cache.Entry(ctx, s.ID)
		if err != nil {
			log.Warn().Err(err).Int("session_id", s.ID).Msg("Cache lookup failed, treating record as new")
			res.Create = append(res.Create, s)
			continue
		}
		if !found {
			res.Create = append(res.Create, s)
			continue
		}

		same, err := models.Equal(s, cached.Session)
		if err != nil {
			log.Warn().Err(err).Int("session_id", s.ID).Msg("Record comparison failed, treating record as changed")
			same = false
		}
		switch {
		case same:
			res.Skip = append(res.Skip, s)
		case cached.RemoteObjectID != "":
			res.Update = append(res.Update, UpdateItem{Session: s, RemoteObjectID: cached.RemoteObjectID})
		default:
			// Changed but never created downstream.
			log.Warn().Int("session_id", s.ID).Str("status", string(cached.Status)).
				Msg("Changed record has no remote object id, scheduling create")
			res.Anomalies++
			res.Create = append(res.Create, s)
		}
	}

	metrics.RecordDiff(len(res.Create), len(res.Update), len(res.Skip), res.Anomalies)
	log.Info().
		Int("create", len(res.Create)).
		Int("update", len(res.Update)).
		Int("skip", len(res.Skip)).
		Int("anomalies", res.Anomalies).
		Msg("Diff complete")
	return res, nil
}
