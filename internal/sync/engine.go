// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/intrasync/internal/anytype"
	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/diff"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/store"
)

// DefaultBatchSize is the number of objects per bulk create call.
const DefaultBatchSize = 50

// Downstream is the object API the engine writes to.
type Downstream interface {
	CreateObjects(ctx context.Context, objects []anytype.Object) ([]anytype.Result, error)
	CreateObject(ctx context.Context, obj anytype.Object) (anytype.Result, error)
	UpdateObject(ctx context.Context, objectID string, obj anytype.Object) (anytype.Result, error)
	AddToCollection(ctx context.Context, objectIDs []string) error
}

// Engine sends records downstream and records confirmed remote ids in the
// cache.
type Engine struct {
	down      Downstream
	cache     store.Cache
	batchSize int
}

// NewEngine creates an engine. A non-positive batchSize uses DefaultBatchSize.
func NewEngine(down Downstream, cache store.Cache, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Engine{down: down, cache: cache, batchSize: batchSize}
}

// BatchSize returns the effective batch size.
func (e *Engine) BatchSize() int {
	return e.batchSize
}

// CreateMany converts sessions and creates them downstream.
func (e *Engine) CreateMany(ctx context.Context, sessions []models.ProjectSession) (success, errs int, err error) {
	return e.CreateObjects(ctx, anytype.ConvertAll(sessions), sessions)
}

// CreateObjects creates objects in batches. objects[i] must have been built
// from sessions[i]; a mismatch is reported before any network call.
//
// Items the bulk response marks as failed, and every item of a batch whose
// bulk call failed or returned a result count different from the batch, are
// retried one at a time. Only a configuration or auth
// failure (or a cancelled context) returns an error; everything else is
// counted.
func (e *Engine) CreateObjects(ctx context.Context, objects []anytype.Object, sessions []models.ProjectSession) (success, errs int, err error) {
	if err := checkAlignment(objects, sessions); err != nil {
		return 0, 0, err
	}
	if len(objects) == 0 {
		return 0, 0, nil
	}

	log := logging.Ctx(ctx)
	log.Info().Int("count", len(objects)).Int("batch_size", e.batchSize).Msg("Creating objects")

	var created []string
	for start := 0; start < len(objects); start += e.batchSize {
		end := min(start+e.batchSize, len(objects))
		batch := objects[start:end]
		batchSessions := sessions[start:end]
		metrics.SyncBatchSize.Observe(float64(len(batch)))

		results, bulkErr := e.down.CreateObjects(ctx, batch)
		if bulkErr == nil && len(results) != len(batch) {
			bulkErr = apierr.Newf(apierr.KindParse, "create objects",
				"bulk response has %d results for %d objects", len(results), len(batch))
		}
		if bulkErr != nil {
			if abort(ctx, bulkErr) {
				return success, errs, bulkErr
			}
			log.Error().Err(bulkErr).
				Int("from", start+1).Int("to", end).
				Msg("Bulk create failed, retrying objects individually")
			e.logCacheState(ctx, batchSessions)

			s, f, ids, err := e.createIndividually(ctx, batch, batchSessions, "batch_error")
			success += s
			errs += f
			created = append(created, ids...)
			if err != nil {
				return success, errs, err
			}
			continue
		}

		var retryObjects []anytype.Object
		var retrySessions []models.ProjectSession
		for i, res := range results {
			s := batchSessions[i]
			if res.Failed() {
				log.Warn().Int("session_id", s.ID).Str("name", batch[i].Name).Str("error", res.Error).
					Msg("Object rejected in bulk create")
				retryObjects = append(retryObjects, batch[i])
				retrySessions = append(retrySessions, s)
				continue
			}
			ok, id := e.recordCreated(ctx, s, res)
			if ok {
				success++
			} else {
				errs++
			}
			if id != "" {
				created = append(created, id)
			}
		}

		if len(retryObjects) > 0 {
			s, f, ids, err := e.createIndividually(ctx, retryObjects, retrySessions, "item_error")
			success += s
			errs += f
			created = append(created, ids...)
			if err != nil {
				return success, errs, err
			}
		}
		log.Info().Int("done", end).Int("total", len(objects)).Int("success", success).Int("errors", errs).
			Msg("Create progress")
	}

	e.fileCreated(ctx, created)
	return success, errs, nil
}

// createIndividually creates each object with its own call.
func (e *Engine) createIndividually(ctx context.Context, objects []anytype.Object, sessions []models.ProjectSession, reason string) (success, errs int, created []string, err error) {
	log := logging.Ctx(ctx)
	for i, obj := range objects {
		s := sessions[i]
		metrics.SyncIndividualRetriesTotal.WithLabelValues(reason).Inc()

		res, err := e.down.CreateObject(ctx, obj)
		if err != nil {
			metrics.RecordSyncOutcome("create", err)
			if abort(ctx, err) {
				return success, errs, created, err
			}
			errs++
			log.Error().Err(err).Int("session_id", s.ID).Str("name", obj.Name).Msg("Individual create failed")
			continue
		}
		ok, id := e.recordCreated(ctx, s, res)
		if ok {
			success++
			log.Info().Int("session_id", s.ID).Str("name", obj.Name).Msg("Individual create succeeded")
		} else {
			errs++
		}
		if id != "" {
			created = append(created, id)
		}
	}
	return success, errs, created, nil
}

// recordCreated persists the remote id of a confirmed create. A create
// without an id in the response is a success that stays pending. It returns
// false when the cache write failed.
func (e *Engine) recordCreated(ctx context.Context, s models.ProjectSession, res anytype.Result) (bool, string) {
	log := logging.Ctx(ctx)
	if res.ID == "" {
		metrics.RecordSyncOutcome("create", nil)
		log.Warn().Int("session_id", s.ID).Msg("Create response has no object id, record stays pending")
		return true, ""
	}
	if err := e.cache.Save(ctx, s, res.ID); err != nil {
		metrics.RecordSyncOutcome("create", err)
		log.Error().Err(err).Int("session_id", s.ID).Str("object_id", res.ID).
			Msg("Object created but its id could not be cached")
		return false, res.ID
	}
	metrics.RecordSyncOutcome("create", nil)
	log.Debug().Int("session_id", s.ID).Str("object_id", res.ID).Msg("Object id cached")
	return true, res.ID
}

// logCacheState reports, for diagnostics only, which records of a failed
// batch have no cache row. A missing row is not proof of remote success;
// every item is retried regardless.
func (e *Engine) logCacheState(ctx context.Context, sessions []models.ProjectSession) {
	var missing []int
	for _, s := range sessions {
		if _, found, err := e.cache.Entry(ctx, s.ID); err == nil && !found {
			missing = append(missing, s.ID)
		}
	}
	if len(missing) > 0 {
		logging.Ctx(ctx).Warn().Ints("session_ids", missing).
			Msg("Records of the failed batch are not cached; they may already exist downstream")
	}
}

func (e *Engine) fileCreated(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := e.down.AddToCollection(ctx, ids); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("count", len(ids)).Msg("Could not add created objects to the collection")
	}
}

// UpdateMany updates each item's object. A failed item is counted and does
// not stop the others.
func (e *Engine) UpdateMany(ctx context.Context, items []diff.UpdateItem) (success, errs int, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}
	log := logging.Ctx(ctx)
	log.Info().Int("count", len(items)).Msg("Updating objects")

	for i, item := range items {
		obj := anytype.Convert(item.Session)
		_, err := e.down.UpdateObject(ctx, item.RemoteObjectID, obj)
		if err == nil {
			err = e.cache.Save(ctx, item.Session, item.RemoteObjectID)
		}
		metrics.RecordSyncOutcome("update", err)

		switch {
		case err == nil:
			success++
			log.Debug().Int("session_id", item.Session.ID).Str("object_id", item.RemoteObjectID).Msg("Object updated")
		case abort(ctx, err):
			return success, errs, err
		default:
			errs++
			log.Error().Err(err).Int("session_id", item.Session.ID).Str("name", obj.Name).
				Str("object_id", item.RemoteObjectID).Msg("Update failed")
		}

		if (i+1)%e.batchSize == 0 || i == len(items)-1 {
			log.Info().Int("done", i+1).Int("total", len(items)).Msg("Update progress")
		}
	}
	return success, errs, nil
}

// abort reports whether err must stop the whole run.
func abort(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return apierr.IsFatalForRun(err)
}

// checkAlignment verifies that objects[i] was built from sessions[i].
func checkAlignment(objects []anytype.Object, sessions []models.ProjectSession) error {
	const op = "create objects"
	if len(objects) != len(sessions) {
		return apierr.Sync(op, fmt.Errorf("objects and sessions differ in length: objects=%d, sessions=%d", len(objects), len(sessions)))
	}

	var mismatches []string
	for i := range objects {
		if objects[i].Name != sessions[i].ProjectName {
			mismatches = append(mismatches, fmt.Sprintf("index %d: object %q, session %q", i, objects[i].Name, sessions[i].ProjectName))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	shown := mismatches
	if len(shown) > 10 {
		shown = shown[:10]
	}
	msg := fmt.Sprintf("objects and sessions are misaligned (%d mismatches): %s", len(mismatches), strings.Join(shown, "; "))
	if extra := len(mismatches) - len(shown); extra > 0 {
		msg += fmt.Sprintf("; and %d more", extra)
	}
	return apierr.Sync(op, errors.New(msg))
}
