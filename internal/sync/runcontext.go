// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package sync

import (
	"context"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/logging"
)

// Run modes, also used as metrics labels.
const (
	ModeRun       = "run"
	ModeFetch     = "fetch"
	ModeSyncCache = "sync-cache"
)

// RunContext is the mutable state of one invocation.
type RunContext struct {
	// ID is a UUID; logs carry its first 8 characters.
	ID        string
	Mode      string
	StartedAt time.Time
	// Requests counts 42 API calls made during the run.
	Requests *fortytwo.RequestCounter

	mu       gosync.Mutex
	restored map[int]struct{}
}

// NewRunContext starts a run in the given mode.
func NewRunContext(mode string) *RunContext {
	return &RunContext{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
		Requests:  fortytwo.NewRequestCounter(),
		restored:  make(map[int]struct{}),
	}
}

// ShortID returns the run ID as shown in logs.
func (rc *RunContext) ShortID() string {
	if len(rc.ID) > 8 {
		return rc.ID[:8]
	}
	return rc.ID
}

// Attach returns ctx carrying the run ID and request counter.
func (rc *RunContext) Attach(ctx context.Context) context.Context {
	ctx = logging.ContextWithRunID(ctx, rc.ShortID())
	return fortytwo.ContextWithCounter(ctx, rc.Requests)
}

// Phase returns ctx tagged with a pipeline phase for logging.
func (rc *RunContext) Phase(ctx context.Context, phase string) context.Context {
	return logging.ContextWithPhase(rc.Attach(ctx), phase)
}

// MarkRestored records that id was sent from the cache in this run.
func (rc *RunContext) MarkRestored(id int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.restored[id] = struct{}{}
}

// IsRestored reports whether id was sent from the cache in this run.
func (rc *RunContext) IsRestored(id int) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	_, ok := rc.restored[id]
	return ok
}

// Restored returns the restored ids in ascending order.
func (rc *RunContext) Restored() []int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]int, 0, len(rc.restored))
	for id := range rc.restored {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Elapsed returns the time since the run started.
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartedAt)
}
