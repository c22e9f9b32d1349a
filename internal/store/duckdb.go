// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package store

import (
	_ "embed"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// The DuckDB table has no status index. DuckDB turns an update of an
// indexed column into delete plus insert, which fails the primary key check
// on upsert.
//
//go:embed schema_duckdb.sql
var duckdbSchema string

var duckdbDialect = dialect{
	backend: BackendDuckDB,
	driver:  "duckdb",
	setup:   []string{duckdbSchema},
}

// OpenDuckDB opens (or creates) the DuckDB cache file at path.
func OpenDuckDB(path string, opts ...Option) (*SQLCache, error) {
	return openSQL(duckdbDialect, path, opts...)
}
