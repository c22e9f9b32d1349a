// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount extracts the sample count of a Prometheus histogram
func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		statusCode int
		wantLabel  string
	}{
		{"listing ok", "/v2/project_sessions", 200, "200"},
		{"rule not found", "/v2/rules/*", 404, "404"},
		{"throttled", "/v2/project_sessions/*/teams", 429, "429"},
		{"transport failure", "/v2/scales/*", 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := APIRequestsTotal.WithLabelValues("fortytwo", "GET", tt.endpoint, tt.wantLabel)
			before := testutil.ToFloat64(c)

			RecordAPIRequest("fortytwo", "GET", tt.endpoint, tt.statusCode, 10*time.Millisecond)

			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordCacheOperation(t *testing.T) {
	ok := CacheOperationsTotal.WithLabelValues("sqlite", "save", "success")
	bad := CacheOperationsTotal.WithLabelValues("sqlite", "save", "error")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordCacheOperation("sqlite", "save", nil)
	RecordCacheOperation("sqlite", "save", errors.New("disk full"))

	if testutil.ToFloat64(ok)-okBefore != 1 {
		t.Error("expected one success")
	}
	if testutil.ToFloat64(bad)-badBefore != 1 {
		t.Error("expected one error")
	}
}

func TestRecordDiff(t *testing.T) {
	create := DiffRecordsTotal.WithLabelValues("create")
	skip := DiffRecordsTotal.WithLabelValues("skip")
	c0, s0 := testutil.ToFloat64(create), testutil.ToFloat64(skip)

	RecordDiff(3, 1, 7, 0)

	if testutil.ToFloat64(create)-c0 != 3 {
		t.Error("expected 3 creates")
	}
	if testutil.ToFloat64(skip)-s0 != 7 {
		t.Error("expected 7 skips")
	}
}

func TestRecordRun(t *testing.T) {
	RecordRun("full", 2*time.Second, 0)
	if testutil.ToFloat64(RunErrors.WithLabelValues("full")) != 0 {
		t.Error("expected zero errors gauge")
	}
	if testutil.ToFloat64(RunLastSuccess.WithLabelValues("full")) == 0 {
		t.Error("expected last success timestamp to be set")
	}

	RecordRun("fetch", time.Second, 4)
	if testutil.ToFloat64(RunErrors.WithLabelValues("fetch")) != 4 {
		t.Error("expected errors gauge of 4")
	}
}

func TestRecordRunDuration(t *testing.T) {
	h, ok := RunDuration.WithLabelValues("sync-cache").(prometheus.Histogram)
	if !ok {
		t.Fatal("run duration observer is not a histogram")
	}
	before := histogramCount(t, h)

	RecordRun("sync-cache", 90*time.Second, 1)

	if got := histogramCount(t, h) - before; got != 1 {
		t.Errorf("sample count delta = %d, want 1", got)
	}
	if testutil.ToFloat64(RunErrors.WithLabelValues("sync-cache")) != 1 {
		t.Error("expected errors gauge of 1")
	}
}

func TestSyncBatchSizeBuckets(t *testing.T) {
	before := histogramCount(t, SyncBatchSize)
	SyncBatchSize.Observe(50)
	SyncBatchSize.Observe(3)
	if got := histogramCount(t, SyncBatchSize) - before; got != 2 {
		t.Errorf("sample count delta = %d, want 2", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	name := "anytype"

	CircuitBreakerState.WithLabelValues(name).Set(2)
	if testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)) != 2 {
		t.Error("expected open state")
	}
	CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	CircuitBreakerTransitions.WithLabelValues(name, "closed", "open").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(3)
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordSyncOutcome("create", nil)
			RecordRetry("anytype", "server_error")
			RecordEnrichmentDegraded("attachments", "not_found")
			RecordRateLimitWait("fortytwo", "quota", time.Second)
		}()
	}
	wg.Wait()
}

func TestPushFrom(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "intrasync_test_pushed_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(2)

	if err := PushFrom(context.Background(), reg, server.URL, "intrasync"); err != nil {
		t.Fatalf("PushFrom() error = %v", err)
	}
	if !strings.HasPrefix(gotPath, "/metrics/job/intrasync") {
		t.Errorf("unexpected push path %q", gotPath)
	}
	if gotBody == "" {
		t.Error("expected a request body")
	}
}

func TestPushFromEmptyURL(t *testing.T) {
	if err := PushFrom(context.Background(), prometheus.NewRegistry(), "", "intrasync"); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("anytype", "POST", "/v1/spaces/*/objects", 200, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}
