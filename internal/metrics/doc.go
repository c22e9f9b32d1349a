// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package metrics defines the Prometheus instrumentation for a sync run.
//
// Metrics are registered on the default registry through promauto. Because a
// run is a short-lived batch job there is no scrape endpoint; instead Push
// sends the final values to a Prometheus Pushgateway when one is configured.
//
// Metric families:
//   - intrasync_api_requests_total / _duration_seconds: every HTTP attempt, by target and endpoint pattern
//   - intrasync_api_retries_total: retries by reason (429, 5xx, transport)
//   - intrasync_rate_limit_wait_seconds: quota and Retry-After sleeps
//   - intrasync_enrichment_degraded_total: enrichment categories that fell back to defaults
//   - intrasync_cache_operations_total: durable cache calls by backend and result
//   - intrasync_diff_records_total: diff classification counts
//   - intrasync_sync_records_total / _batch_size: downstream create and update outcomes
//   - intrasync_circuit_breaker_*: downstream breaker state
//   - intrasync_run_*: run duration, error count and last success time
package metrics
