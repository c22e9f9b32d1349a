// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package store is the durable record cache: the last known state of every
project session and whether the downstream object exists yet.

Each Entry has a status:

  - pending: fetched, no downstream object recorded yet
  - sent: the downstream object id is stored

An entry is sent if and only if it has a remote object id. Save never
removes a stored id, so a record that was created downstream stays sent even
when its data is refreshed.

Backends:

  - sqlite (default): modernc.org/sqlite through database/sql, one row per
    session in the cache table
  - duckdb: github.com/duckdb/duckdb-go/v2 through the same SQL code and
    table layout, for caches that are queried with analytics tooling
  - badger: github.com/dgraph-io/badger/v4, one key per session
    ("session:" + zero-padded id) holding the JSON entry

All backends run every mutation in a single transaction and are exercised
by the same conformance tests. Open wraps the chosen backend so every call
is counted in intrasync_cache_operations_total.
*/
package store
