// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/models"
)

const sessionKeyPrefix = "session:"

// Badger is the embedded key-value cache backend.
type Badger struct {
	db   *badger.DB
	path string
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) the cache directory at path.
func OpenBadger(path string, opts ...Option) (*Badger, error) {
	o := buildOptions(opts)

	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil // zerolog owns logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	logging.Info().Str("path", path).Msg("Badger cache opened")
	return &Badger{db: db, path: path, now: o.now}, nil
}

func sessionKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%020d", sessionKeyPrefix, id))
}

func (c *Badger) check() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

func readEntry(txn *badger.Txn, id int) (Entry, bool, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache entry %d: %w", id, err)
	}
	var e Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &e)
	}); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry %d: %w", id, err)
	}
	return e, true, nil
}

func writeEntry(txn *badger.Txn, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal cache entry %d: %w", e.Session.ID, err)
	}
	return txn.Set(sessionKey(e.Session.ID), data)
}

// Save implements Cache.
func (c *Badger) Save(ctx context.Context, s models.ProjectSession, remoteObjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		existing, found, err := readEntry(txn, s.ID)
		if err != nil {
			return err
		}
		var prev *Entry
		if found {
			prev = &existing
		}
		return writeEntry(txn, nextEntry(prev, s, remoteObjectID, c.now().UTC()))
	})
}

// Get implements Cache.
func (c *Badger) Get(ctx context.Context, id int) (models.ProjectSession, bool, error) {
	e, ok, err := c.Entry(ctx, id)
	return e.Session, ok, err
}

// Entry implements Cache.
func (c *Badger) Entry(ctx context.Context, id int) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return Entry{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	var (
		e     Entry
		found bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		e, found, err = readEntry(txn, id)
		return err
	})
	return e, found, err
}

// RemoteObjectID implements Cache.
func (c *Badger) RemoteObjectID(ctx context.Context, id int) (string, bool, error) {
	e, found, err := c.Entry(ctx, id)
	if err != nil || !found || e.RemoteObjectID == "" {
		return "", false, err
	}
	return e.RemoteObjectID, true, nil
}

// Pending implements Cache.
func (c *Badger) Pending(ctx context.Context) ([]models.ProjectSession, error) {
	entries, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Status == StatusPending {
			pending = append(pending, e)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].Session.ID < pending[j].Session.ID
	})

	out := make([]models.ProjectSession, 0, len(pending))
	for _, e := range pending {
		out = append(out, e.Session)
	}
	return out, nil
}

// MarkAsSent implements Cache.
func (c *Badger) MarkAsSent(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e, found, err := readEntry(txn, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if e.RemoteObjectID == "" {
			return ErrNoRemoteID
		}
		e.Status = StatusSent
		e.UpdatedAt = c.now().UTC()
		return writeEntry(txn, e)
	})
}

// Delete implements Cache.
func (c *Badger) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
}

// Clear implements Cache.
func (c *Badger) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.DropPrefix([]byte(sessionKeyPrefix))
}

// CountPending implements Cache.
func (c *Badger) CountPending(ctx context.Context) (int, error) {
	st, err := c.Stats(ctx)
	return st.Pending, err
}

// All implements Cache. Keys are zero padded, so iteration order is id order.
func (c *Badger) All(ctx context.Context) ([]Entry, error) {
	return c.scan(ctx)
}

// Stats implements Cache.
func (c *Badger) Stats(ctx context.Context) (Stats, error) {
	entries, err := c.scan(ctx)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, e := range entries {
		st.Total++
		switch e.Status {
		case StatusPending:
			st.Pending++
		case StatusSent:
			st.Sent++
		}
	}
	return st, nil
}

// Close implements Cache.
func (c *Badger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	logging.Info().Str("path", c.path).Msg("Badger cache closed")
	return c.db.Close()
}

// scan reads every entry. Undecodable entries are logged and skipped.
func (c *Badger) scan(ctx context.Context) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var e Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable cache entry")
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	return entries, nil
}
