// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_api_requests_total",
			Help: "Total number of outbound HTTP attempts",
		},
		[]string{"target", "method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intrasync_api_request_duration_seconds",
			Help:    "Duration of outbound HTTP attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target", "endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_api_retries_total",
			Help: "Total number of HTTP retries by reason",
		},
		[]string{"target", "reason"}, // reason: "rate_limited", "server_error", "transport"
	)

	RateLimitWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intrasync_rate_limit_wait_seconds",
			Help:    "Time spent sleeping for upstream quota or Retry-After",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"target", "reason"}, // reason: "quota", "retry_after", "backoff"
	)

	// Fetch Metrics
	EnrichmentDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_enrichment_degraded_total",
			Help: "Enrichment categories that fell back to their default value",
		},
		[]string{"category", "error_type"},
	)

	RecordsFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intrasync_records_fetched_total",
			Help: "Total number of records returned by the listing endpoint",
		},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_cache_operations_total",
			Help: "Durable cache operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	CachePendingRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intrasync_cache_pending_records",
			Help: "Records in the durable cache still waiting for downstream confirmation",
		},
	)

	// Diff Metrics
	DiffRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_diff_records_total",
			Help: "Diff classification results",
		},
		[]string{"class"}, // class: "create", "update", "skip", "anomaly"
	)

	// Sync Metrics
	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_sync_records_total",
			Help: "Downstream create and update outcomes",
		},
		[]string{"operation", "result"}, // operation: "create", "update"; result: "success", "error"
	)

	SyncBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intrasync_sync_batch_size",
			Help:    "Number of objects per bulk create call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	SyncIndividualRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_sync_individual_retries_total",
			Help: "Objects retried one at a time after a bulk create problem",
		},
		[]string{"reason"}, // reason: "item_error", "batch_error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intrasync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intrasync_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intrasync_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Run Metrics
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intrasync_run_duration_seconds",
			Help:    "Duration of a run in seconds",
			Buckets: []float64{1, 10, 30, 60, 300, 600, 1800, 3600, 7200},
		},
		[]string{"mode"},
	)

	RunErrors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intrasync_run_errors",
			Help: "Errored records in the last run",
		},
		[]string{"mode"},
	)

	RunLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intrasync_run_last_success_timestamp",
			Help: "Unix timestamp of the last run that finished without errors",
		},
		[]string{"mode"},
	)
)

// RecordAPIRequest records one HTTP attempt.
func RecordAPIRequest(target, method, endpoint string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	APIRequestsTotal.WithLabelValues(target, method, endpoint, code).Inc()
	APIRequestDuration.WithLabelValues(target, endpoint).Observe(duration.Seconds())
}

// RecordRetry records a retry decision.
func RecordRetry(target, reason string) {
	APIRetriesTotal.WithLabelValues(target, reason).Inc()
}

// RecordRateLimitWait records a quota, Retry-After or backoff sleep.
func RecordRateLimitWait(target, reason string, d time.Duration) {
	RateLimitWaitSeconds.WithLabelValues(target, reason).Observe(d.Seconds())
}

// RecordEnrichmentDegraded records an enrichment category that fell back to its default.
func RecordEnrichmentDegraded(category, errorType string) {
	EnrichmentDegradedTotal.WithLabelValues(category, errorType).Inc()
}

// RecordCacheOperation records a durable cache call.
func RecordCacheOperation(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CacheOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordDiff records one diff pass.
func RecordDiff(creates, updates, skips, anomalies int) {
	DiffRecordsTotal.WithLabelValues("create").Add(float64(creates))
	DiffRecordsTotal.WithLabelValues("update").Add(float64(updates))
	DiffRecordsTotal.WithLabelValues("skip").Add(float64(skips))
	DiffRecordsTotal.WithLabelValues("anomaly").Add(float64(anomalies))
}

// RecordSyncOutcome records the outcome of one create or update.
func RecordSyncOutcome(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SyncRecordsTotal.WithLabelValues(operation, result).Inc()
}

// RecordRun records the end of a run.
func RecordRun(mode string, duration time.Duration, errors int) {
	RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RunErrors.WithLabelValues(mode).Set(float64(errors))
	if errors == 0 {
		RunLastSuccess.WithLabelValues(mode).Set(float64(time.Now().Unix()))
	}
}

// Push sends every registered metric to a Prometheus Pushgateway under the
// given job name. Runs are short-lived, so there is nothing to scrape.
func Push(ctx context.Context, url, job string) error {
	return PushFrom(ctx, prometheus.DefaultGatherer, url, job)
}

// PushFrom is Push with an explicit gatherer.
func PushFrom(ctx context.Context, g prometheus.Gatherer, url, job string) error {
	if url == "" {
		return fmt.Errorf("pushgateway url is empty")
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
