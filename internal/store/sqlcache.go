// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/models"
)

// timeLayout is fixed width so that text ordering equals time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dialect describes one database/sql engine holding the cache table.
type dialect struct {
	backend string
	driver  string
	// setup runs in order after the connection is opened.
	setup []string
}

// SQLCache is the database/sql cache backend shared by SQLite and DuckDB.
type SQLCache struct {
	db      *sql.DB
	path    string
	backend string
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

func openSQL(d dialect, path string, opts ...Option) (*SQLCache, error) {
	o := buildOptions(opts)

	db, err := sql.Open(d.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", d.backend, err)
	}
	// One writer; the cache is owned by a single run.
	db.SetMaxOpenConns(1)

	for _, stmt := range d.setup {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare %s cache: %w", d.backend, err)
		}
	}

	logging.Info().Str("path", path).Str("backend", d.backend).Msg("Cache opened")
	return &SQLCache{db: db, path: path, backend: d.backend, now: o.now}, nil
}

// Backend returns the engine name.
func (c *SQLCache) Backend() string {
	return c.backend
}

func (c *SQLCache) check() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

// Save implements Cache.
func (c *SQLCache) Save(ctx context.Context, s models.ProjectSession, remoteObjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, found, err := scanEntry(tx.QueryRowContext(ctx, selectEntrySQL+" WHERE session_id = ?", s.ID))
	if err != nil {
		return err
	}
	var prev *Entry
	if found {
		prev = &existing
	}
	e := nextEntry(prev, s, remoteObjectID, c.now().UTC())

	data, err := json.Marshal(e.Session)
	if err != nil {
		return fmt.Errorf("marshal session %d: %w", s.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cache (session_id, data, status, anytype_object_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			data = excluded.data,
			status = excluded.status,
			anytype_object_id = excluded.anytype_object_id,
			updated_at = excluded.updated_at`,
		s.ID, string(data), string(e.Status), nullString(e.RemoteObjectID),
		e.CreatedAt.Format(timeLayout), e.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save session %d: %w", s.ID, err)
	}
	return tx.Commit()
}

// Get implements Cache.
func (c *SQLCache) Get(ctx context.Context, id int) (models.ProjectSession, bool, error) {
	e, ok, err := c.Entry(ctx, id)
	return e.Session, ok, err
}

// Entry implements Cache.
func (c *SQLCache) Entry(ctx context.Context, id int) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return Entry{}, false, err
	}
	return scanEntry(c.db.QueryRowContext(ctx, selectEntrySQL+" WHERE session_id = ?", id))
}

// RemoteObjectID implements Cache.
func (c *SQLCache) RemoteObjectID(ctx context.Context, id int) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return "", false, err
	}

	var remote sql.NullString
	err := c.db.QueryRowContext(ctx, "SELECT anytype_object_id FROM cache WHERE session_id = ?", id).Scan(&remote)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read remote id for %d: %w", id, err)
	}
	if !remote.Valid || remote.String == "" {
		return "", false, nil
	}
	return remote.String, true, nil
}

// Pending implements Cache. Rows whose data cannot be decoded are logged
// and skipped.
func (c *SQLCache) Pending(ctx context.Context) ([]models.ProjectSession, error) {
	entries, err := c.query(ctx, selectEntrySQL+" WHERE status = ? ORDER BY created_at ASC, session_id ASC", string(StatusPending))
	if err != nil {
		return nil, err
	}
	out := make([]models.ProjectSession, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Session)
	}
	return out, nil
}

// MarkAsSent implements Cache.
func (c *SQLCache) MarkAsSent(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}

	var remote sql.NullString
	err := c.db.QueryRowContext(ctx, "SELECT anytype_object_id FROM cache WHERE session_id = ?", id).Scan(&remote)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read remote id for %d: %w", id, err)
	}
	if !remote.Valid || remote.String == "" {
		return ErrNoRemoteID
	}

	_, err = c.db.ExecContext(ctx, "UPDATE cache SET status = ?, updated_at = ? WHERE session_id = ?",
		string(StatusSent), c.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark %d as sent: %w", id, err)
	}
	return nil
}

// Delete implements Cache.
func (c *SQLCache) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

// Clear implements Cache.
func (c *SQLCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// CountPending implements Cache.
func (c *SQLCache) CountPending(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache WHERE status = ?", string(StatusPending)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// All implements Cache.
func (c *SQLCache) All(ctx context.Context) ([]Entry, error) {
	return c.query(ctx, selectEntrySQL+" ORDER BY session_id ASC")
}

// Stats implements Cache.
func (c *SQLCache) Stats(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return Stats{}, err
	}

	rows, err := c.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM cache GROUP BY status")
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
		switch Status(status) {
		case StatusPending:
			st.Pending = n
		case StatusSent:
			st.Sent = n
		}
		st.Total += n
	}
	return st, rows.Err()
}

// Close implements Cache.
func (c *SQLCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	logging.Info().Str("path", c.path).Str("backend", c.backend).Msg("Cache closed")
	return c.db.Close()
}

const selectEntrySQL = "SELECT session_id, data, status, anytype_object_id, created_at, updated_at FROM cache"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, bool, error) {
	var (
		id                   int
		data, status         string
		remote               sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &data, &status, &remote, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache row: %w", err)
	}

	e := Entry{Status: Status(status), RemoteObjectID: remote.String}
	if err := json.Unmarshal([]byte(data), &e.Session); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached session %d: %w", id, err)
	}
	e.Session.ID = id
	if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Entry{}, false, fmt.Errorf("decode created_at of %d: %w", id, err)
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return Entry{}, false, fmt.Errorf("decode updated_at of %d: %w", id, err)
	}
	return e, true, nil
}

func (c *SQLCache) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, _, err := scanEntry(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Skipping unreadable cache row")
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
