// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	"context"

	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
)

// instrumented counts every cache call and keeps the pending gauge current.
type instrumented struct {
	Cache
	backend string
}

// Instrument wraps c with metrics. The backend name is used as a label.
func Instrument(c Cache, backend string) Cache {
	return &instrumented{Cache: c, backend: backend}
}

func (c *instrumented) record(op string, err error) {
	metrics.RecordCacheOperation(c.backend, op, err)
}

func (c *instrumented) refreshPending(ctx context.Context) {
	if n, err := c.Cache.CountPending(ctx); err == nil {
		metrics.CachePendingRecords.Set(float64(n))
	}
}

func (c *instrumented) Save(ctx context.Context, s models.ProjectSession, remoteObjectID string) error {
	err := c.Cache.Save(ctx, s, remoteObjectID)
	c.record("save", err)
	return err
}

func (c *instrumented) Get(ctx context.Context, id int) (models.ProjectSession, bool, error) {
	s, ok, err := c.Cache.Get(ctx, id)
	c.record("get", err)
	return s, ok, err
}

func (c *instrumented) Entry(ctx context.Context, id int) (Entry, bool, error) {
	e, ok, err := c.Cache.Entry(ctx, id)
	c.record("get", err)
	return e, ok, err
}

func (c *instrumented) RemoteObjectID(ctx context.Context, id int) (string, bool, error) {
	remote, ok, err := c.Cache.RemoteObjectID(ctx, id)
	c.record("remote_id", err)
	return remote, ok, err
}

func (c *instrumented) Pending(ctx context.Context) ([]models.ProjectSession, error) {
	out, err := c.Cache.Pending(ctx)
	c.record("pending", err)
	if err == nil {
		metrics.CachePendingRecords.Set(float64(len(out)))
	}
	return out, err
}

func (c *instrumented) MarkAsSent(ctx context.Context, id int) error {
	err := c.Cache.MarkAsSent(ctx, id)
	c.record("mark_sent", err)
	if err == nil {
		c.refreshPending(ctx)
	}
	return err
}

func (c *instrumented) Delete(ctx context.Context, id int) error {
	err := c.Cache.Delete(ctx, id)
	c.record("delete", err)
	if err == nil {
		c.refreshPending(ctx)
	}
	return err
}

func (c *instrumented) Clear(ctx context.Context) error {
	err := c.Cache.Clear(ctx)
	c.record("clear", err)
	if err == nil {
		metrics.CachePendingRecords.Set(0)
	}
	return err
}

func (c *instrumented) CountPending(ctx context.Context) (int, error) {
	n, err := c.Cache.CountPending(ctx)
	c.record("count_pending", err)
	if err == nil {
		metrics.CachePendingRecords.Set(float64(n))
	}
	return n, err
}

func (c *instrumented) All(ctx context.Context) ([]Entry, error) {
	out, err := c.Cache.All(ctx)
	c.record("all", err)
	return out, err
}

func (c *instrumented) Stats(ctx context.Context) (Stats, error) {
	st, err := c.Cache.Stats(ctx)
	c.record("stats", err)
	if err == nil {
		metrics.CachePendingRecords.Set(float64(st.Pending))
	}
	return st, err
}
