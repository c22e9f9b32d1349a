// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package sync orchestrates a run: restore pending records, fetch and enrich
sessions from 42, diff them against the cache, and create or update the
matching Anytype objects.

Per-record lifecycle within a full run:

	fetched -> enriched -> diffed -> {create | update | skip}
	create: cached pending -> sent (remote id stored) on confirmed success
	update: sent entry refreshed only after the update call succeeds
	skip:   no network call

A record that fails to send stays pending (creates) or keeps its previous
cached data (updates), so the next run picks it up again.

Run state lives in a RunContext created per invocation: run ID, start time,
the set of records already restored from the cache in this run, and the 42
request counter. Nothing is kept in package-level variables.

Error policy:
  - the initial listing failing aborts the run with an apierr Sync error
  - configuration and auth errors abort the run
  - everything else is counted per record and the run continues

The Runner returns a Result whose Errors count decides the exit code.
*/
package sync
