// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	_ "embed"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema_sqlite.sql
var sqliteSchema string

var sqliteDialect = dialect{
	backend: BackendSQLite,
	driver:  "sqlite",
	setup:   []string{"PRAGMA busy_timeout = 5000", sqliteSchema},
}

// OpenSQLite opens (or creates) the SQLite cache file at path.
func OpenSQLite(path string, opts ...Option) (*SQLCache, error) {
	return openSQL(sqliteDialect, path, opts...)
}
