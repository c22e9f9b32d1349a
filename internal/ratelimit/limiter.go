// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package ratelimit paces outbound requests to a fixed requests-per-second
// ceiling and reacts to the quota headers an upstream reports.
//
// Pacing is a token bucket (golang.org/x/time/rate) with a burst of one, so
// two calls to WaitIfNeeded never return closer together than 1/rps. The
// bucket's internal lock makes the limiter safe for concurrent callers even
// though the current pipeline is sequential.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
)

// Header names read from upstream responses.
const (
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Config controls pacing and quota handling.
type Config struct {
	// RequestsPerSecond is the pacing ceiling. Zero or negative disables pacing.
	RequestsPerSecond float64
	// Threshold is the remaining-quota level at or below which the limiter
	// sleeps until the reported reset time.
	Threshold int
	// BaseDelay is the fallback sleep when the reset time is absent or unparseable.
	BaseDelay time.Duration
}

// DefaultConfig returns the pacing used for the 42 API (2 req/s).
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2.0,
		Threshold:         10,
		BaseDelay:         500 * time.Millisecond,
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Limiter paces requests and honours upstream quota headers.
type Limiter struct {
	cfg    Config
	name   string
	bucket *rate.Limiter
	now    func() time.Time
	sleep  SleepFunc
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the wall clock used for reset-time arithmetic.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleep overrides the sleep used for quota waits. Tests use it to avoid
// real delays.
func WithSleep(s SleepFunc) Option {
	return func(l *Limiter) { l.sleep = s }
}

// WithName labels log lines and metrics (for example "fortytwo").
func WithName(name string) Option {
	return func(l *Limiter) { l.name = name }
}

// New creates a Limiter.
func New(cfg Config, opts ...Option) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	l := &Limiter{
		cfg:    cfg,
		name:   "default",
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MinInterval returns the minimum spacing between two paced calls.
func (l *Limiter) MinInterval() time.Duration {
	if l.cfg.RequestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / l.cfg.RequestsPerSecond)
}

// WaitIfNeeded blocks until the pacing interval since the previous call has
// elapsed. It only fails when ctx is done.
func (l *Limiter) WaitIfNeeded(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// CheckAndWait inspects the quota headers of a response. When the remaining
// quota is at or below the threshold it sleeps until the reported reset time,
// or for BaseDelay when the reset time is missing or unparseable, and then
// re-arms the pacing clock. Missing or malformed remaining values are ignored.
func (l *Limiter) CheckAndWait(ctx context.Context, h http.Header) error {
	raw := strings.TrimSpace(h.Get(HeaderRemaining))
	if raw == "" {
		return nil
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	if remaining > l.cfg.Threshold {
		return nil
	}

	wait := l.cfg.BaseDelay
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get(HeaderReset)), 10, 64); err == nil {
		wait = time.Unix(reset, 0).Sub(l.now())
		if wait <= 0 {
			return nil
		}
	}

	logging.Warn().
		Str("limiter", l.name).
		Int("remaining", remaining).
		Dur("wait", wait).
		Msg("Rate limit quota low, waiting for reset")
	metrics.RecordRateLimitWait(l.name, "quota", wait)

	if err := l.sleep(ctx, wait); err != nil {
		return err
	}
	l.rearm()
	return nil
}

// RetryAfter extracts the server-mandated wait from a 429 response. The header
// may carry delta seconds or an HTTP date.
func (l *Limiter) RetryAfter(h http.Header) (time.Duration, bool) {
	return ParseRetryAfter(h.Get(HeaderRetryAfter), l.now())
}

// rearm consumes the current token so the next paced call waits a full interval.
func (l *Limiter) rearm() {
	l.bucket.Allow()
}

// ParseRetryAfter parses a Retry-After value relative to now.
func ParseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
