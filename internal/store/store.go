// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/validation"
)

// Status is the sync state of a cached record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendDuckDB = "duckdb"
)

var (
	// ErrNotFound is returned when an operation needs an existing entry.
	ErrNotFound = errors.New("store: entry not found")
	// ErrNoRemoteID is returned by MarkAsSent for an entry without a remote object id.
	ErrNoRemoteID = errors.New("store: entry has no remote object id")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store: closed")
)

// Entry is one cached record.
type Entry struct {
	Session        models.ProjectSession `json:"session"`
	Status         Status                `json:"status"`
	RemoteObjectID string                `json:"remote_object_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// Stats summarizes the cache.
type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
}

// Cache is the durable record cache.
type Cache interface {
	// Save upserts s. A non-empty remoteObjectID stores that id and marks
	// the entry sent. An empty one leaves a stored id untouched; entries
	// without an id are pending.
	Save(ctx context.Context, s models.ProjectSession, remoteObjectID string) error
	Get(ctx context.Context, id int) (models.ProjectSession, bool, error)
	Entry(ctx context.Context, id int) (Entry, bool, error)
	RemoteObjectID(ctx context.Context, id int) (string, bool, error)
	// Pending returns pending records, oldest first (ties by id).
	Pending(ctx context.Context) ([]models.ProjectSession, error)
	MarkAsSent(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Clear(ctx context.Context) error
	CountPending(ctx context.Context) (int, error)
	// All returns every entry ordered by id.
	All(ctx context.Context) ([]Entry, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Backend string `koanf:"backend" validate:"omitempty,oneof=sqlite badger duckdb"`
	// Path is the SQLite or DuckDB file, or the Badger directory.
	Path string `koanf:"path" validate:"required"`
}

// Option customizes a backend.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open creates the parent directory if needed and opens the configured
// backend, wrapped with metrics.
func Open(cfg Config, opts ...Option) (Cache, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendSQLite
	}
	if verr := validation.ValidateStruct(cfg); verr != nil {
		return nil, apierr.New(apierr.KindConfiguration, "store", verr)
	}

	var (
		c   Cache
		err error
	)
	switch backend {
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		c, err = OpenSQLite(cfg.Path, opts...)
	case BackendDuckDB:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		c, err = OpenDuckDB(cfg.Path, opts...)
	case BackendBadger:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		c, err = OpenBadger(cfg.Path, opts...)
	default:
		return nil, apierr.Newf(apierr.KindConfiguration, "store", "unknown cache backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c, backend), nil
}

// nextEntry computes the entry stored by Save. existing is nil for a new
// record.
func nextEntry(existing *Entry, s models.ProjectSession, remoteObjectID string, now time.Time) Entry {
	e := Entry{
		Session:   s,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		e.CreatedAt = existing.CreatedAt
		e.RemoteObjectID = existing.RemoteObjectID
	}
	if remoteObjectID != "" {
		e.RemoteObjectID = remoteObjectID
	}
	if e.RemoteObjectID != "" {
		e.Status = StatusSent
	}
	return e
}
