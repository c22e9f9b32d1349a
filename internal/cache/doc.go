// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package cache provides an in-memory LRU with TTL used to memoize upstream
lookups within a single run.

Many project sessions reference the same rules and evaluation scales, so the
fetcher keeps /v2/rules/{id} and /v2/scales/{id} responses here instead of
requesting them once per session. Entries never outlive the process; the
durable record cache lives in internal/store.

Key features:
  - O(1) Get, Add, Remove and eviction (hashmap + doubly-linked list)
  - lazy TTL expiration with an injectable clock
  - hit/miss statistics
  - safe for concurrent use

Example:

	rules := cache.NewLRU[int, models.Rule](1024, time.Hour)
	if r, ok := rules.Get(42); ok {
	    return r
	}
	rules.Add(42, fetched)
*/
package cache
