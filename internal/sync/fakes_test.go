// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package sync

import (
	"context"
	"fmt"
	"path/filepath"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomtom215/intrasync/internal/anytype"
	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/store"
)

// fakeDownstream records calls and assigns ids "obj-<name>".
type fakeDownstream struct {
	mu gosync.Mutex

	bulkCalls   [][]string
	singleCalls []string
	updateCalls []string
	filed       []string

	// bulkErr fails every bulk call when set.
	bulkErr error
	// rejectInBulk marks these names as failed inside a bulk response.
	rejectInBulk map[string]bool
	// failSingle makes the single create of these names fail.
	failSingle map[string]error
	// failUpdate makes the update of these object ids fail.
	failUpdate map[string]error
	// noID omits the id for these names.
	noID map[string]bool
	// resultDelta adds (positive) or drops (negative) bulk results.
	resultDelta int
}

func (f *fakeDownstream) result(name string) anytype.Result {
	if f.noID[name] {
		return anytype.Result{}
	}
	return anytype.Result{ID: "obj-" + name}
}

func (f *fakeDownstream) CreateObjects(_ context.Context, objects []anytype.Object) ([]anytype.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	f.bulkCalls = append(f.bulkCalls, names)
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	out := make([]anytype.Result, 0, len(objects))
	for _, o := range objects {
		if f.rejectInBulk[o.Name] {
			out = append(out, anytype.Result{Error: "rejected"})
			continue
		}
		out = append(out, f.result(o.Name))
	}
	switch {
	case f.resultDelta > 0:
		for i := 0; i < f.resultDelta; i++ {
			out = append(out, anytype.Result{ID: fmt.Sprintf("obj-extra-%d", i)})
		}
	case f.resultDelta < 0:
		out = out[:max(len(out)+f.resultDelta, 0)]
	}
	return out, nil
}

func (f *fakeDownstream) CreateObject(_ context.Context, obj anytype.Object) (anytype.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleCalls = append(f.singleCalls, obj.Name)
	if err := f.failSingle[obj.Name]; err != nil {
		return anytype.Result{}, err
	}
	return f.result(obj.Name), nil
}

func (f *fakeDownstream) UpdateObject(_ context.Context, id string, _ anytype.Object) (anytype.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, id)
	if err := f.failUpdate[id]; err != nil {
		return anytype.Result{}, err
	}
	return anytype.Result{ID: id}, nil
}

func (f *fakeDownstream) AddToCollection(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filed = append(f.filed, ids...)
	return nil
}

func (f *fakeDownstream) calls() (bulk, single, update int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bulkCalls), len(f.singleCalls), len(f.updateCalls)
}

// fakeFetcher serves fixed sessions.
type fakeFetcher struct {
	sessions  []models.ProjectSession
	listErr   error
	enrichErr map[int]error
	enriched  []int
}

func (f *fakeFetcher) ListAll(context.Context, fortytwo.Filter) ([]models.ProjectSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ProjectSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (f *fakeFetcher) Enrich(_ context.Context, s models.ProjectSession) (models.ProjectSession, fortytwo.Report, error) {
	f.enriched = append(f.enriched, s.ID)
	if err := f.enrichErr[s.ID]; err != nil {
		return s, fortytwo.Report{SessionID: s.ID}, err
	}
	s.Keywords = []string{"enriched"}
	return s, fortytwo.Report{SessionID: s.ID}, nil
}

func newCache(t *testing.T) store.Cache {
	t.Helper()
	c, err := store.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sessionN(id int) models.ProjectSession {
	return models.ProjectSession{
		ID:          id,
		ProjectID:   models.Ptr(id * 10),
		ProjectName: fmt.Sprintf("p%d", id),
		ProjectSlug: fmt.Sprintf("slug-%d", id),
		XP:          models.Ptr(100),
	}
}

func sessionsN(ids ...int) []models.ProjectSession {
	out := make([]models.ProjectSession, 0, len(ids))
	for _, id := range ids {
		out = append(out, sessionN(id))
	}
	return out
}
