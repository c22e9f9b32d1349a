// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package diff

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/intrasync/internal/models"
	"github.com/tomtom215/intrasync/internal/store"
)

type fakeLookup struct {
	entries map[int]store.Entry
	fail    map[int]error
}

func (f *fakeLookup) Entry(_ context.Context, id int) (store.Entry, bool, error) {
	if err, ok := f.fail[id]; ok {
		return store.Entry{}, false, err
	}
	e, ok := f.entries[id]
	return e, ok, nil
}

func rec(id, xp int) models.ProjectSession {
	return models.ProjectSession{ID: id, ProjectName: "p", XP: models.Ptr(xp)}
}

func sentEntry(s models.ProjectSession, remote string) store.Entry {
	return store.Entry{Session: s, Status: store.StatusSent, RemoteObjectID: remote}
}

func ids(ss []models.ProjectSession) []int {
	out := make([]int, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiff_Classification(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{
		entries: map[int]store.Entry{
			2: sentEntry(rec(2, 100), "obj-2"),
			3: sentEntry(rec(3, 100), "obj-3"),
			4: {Session: rec(4, 100), Status: store.StatusPending},
			5: {Session: rec(5, 100), Status: store.StatusPending},
		},
		fail: map[int]error{6: errors.New("disk on fire")},
	}
	fetched := []models.ProjectSession{
		rec(1, 100), // new
		rec(2, 100), // unchanged
		rec(3, 200), // changed, has id
		rec(4, 200), // changed, no id
		rec(5, 100), // unchanged pending
		rec(6, 100), // lookup error
	}

	res, err := NewEngine(lookup).Diff(context.Background(), fetched)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	if got := ids(res.Create); !equalInts(got, []int{1, 4, 6}) {
		t.Errorf("Create = %v, want [1 4 6]", got)
	}
	if got := ids(res.Skip); !equalInts(got, []int{2, 5}) {
		t.Errorf("Skip = %v, want [2 5]", got)
	}
	if len(res.Update) != 1 || res.Update[0].Session.ID != 3 || res.Update[0].RemoteObjectID != "obj-3" {
		t.Errorf("Update = %+v, want session 3 with obj-3", res.Update)
	}
	if res.Anomalies != 1 {
		t.Errorf("Anomalies = %d, want 1", res.Anomalies)
	}
	if res.Total() != len(fetched) {
		t.Errorf("Total() = %d, want %d", res.Total(), len(fetched))
	}
}

func TestDiff_IgnoresIDAndNormalizes(t *testing.T) {
	t.Parallel()

	cached := rec(7, 100)
	cached.Keywords = nil
	fresh := rec(7, 100)
	fresh.Keywords = []string{}

	lookup := &fakeLookup{entries: map[int]store.Entry{7: sentEntry(cached, "obj-7")}}
	res, err := NewEngine(lookup).Diff(context.Background(), []models.ProjectSession{fresh})
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(res.Skip) != 1 {
		t.Errorf("Skip = %v, want the record skipped", ids(res.Skip))
	}
}

func TestDiff_Empty(t *testing.T) {
	t.Parallel()

	res, err := NewEngine(&fakeLookup{}).Diff(context.Background(), nil)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if res.Total() != 0 || res.Anomalies != 0 {
		t.Errorf("Diff(nil) = %+v, want empty", res)
	}
}

func TestDiff_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(&fakeLookup{}).Diff(ctx, []models.ProjectSession{rec(1, 1)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Diff() error = %v, want context.Canceled", err)
	}
}
