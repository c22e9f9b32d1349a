// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package fortytwo

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

var (
	numericSegment = regexp.MustCompile(`/\d+`)
	pageParam      = regexp.MustCompile(`\?page=\d+`)
)

// EndpointCount is one row of a RequestCounter summary.
type EndpointCount struct {
	Pattern string
	Count   int
}

// RequestCounter counts upstream requests per endpoint. It is created per
// run and travels in the context, see ContextWithCounter.
type RequestCounter struct {
	mu     sync.Mutex
	counts map[string]int
	total  int
}

// NewRequestCounter returns an empty counter.
func NewRequestCounter() *RequestCounter {
	return &RequestCounter{counts: map[string]int{}}
}

// Record counts one request. Only the page parameter of the query is kept.
func (c *RequestCounter) Record(path string, query url.Values) {
	key := path
	if page := query.Get("page"); page != "" {
		key += "?page=" + page
	}
	c.mu.Lock()
	c.counts[key]++
	c.total++
	c.mu.Unlock()
}

// Total returns the number of recorded requests.
func (c *RequestCounter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Reset clears all counts.
func (c *RequestCounter) Reset() {
	c.mu.Lock()
	c.counts = map[string]int{}
	c.total = 0
	c.mu.Unlock()
}

// Summary groups endpoints by pattern (numeric segments become "/*" and
// "?page=N" becomes "?page=*"), sorted by count descending then pattern.
func (c *RequestCounter) Summary() []EndpointCount {
	c.mu.Lock()
	grouped := make(map[string]int, len(c.counts))
	for endpoint, n := range c.counts {
		grouped[Pattern(endpoint)] += n
	}
	c.mu.Unlock()

	out := make([]EndpointCount, 0, len(grouped))
	for p, n := range grouped {
		out = append(out, EndpointCount{Pattern: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// Log writes the summary at info level.
func (c *RequestCounter) Log(logger *zerolog.Logger) {
	total := c.Total()
	if total == 0 {
		return
	}
	logger.Info().Int("total_requests", total).Msg("Upstream request statistics")
	for _, row := range c.Summary() {
		logger.Info().Str("endpoint", row.Pattern).Int("count", row.Count).Msg("Requests by endpoint")
	}
}

// Pattern normalizes an endpoint for grouping.
func Pattern(endpoint string) string {
	p := numericSegment.ReplaceAllString(endpoint, "/*")
	return pageParam.ReplaceAllString(p, "?page=*")
}

type counterKey struct{}

// ContextWithCounter attaches a counter to ctx. Fetcher requests made with
// the returned context are recorded in it.
func ContextWithCounter(ctx context.Context, c *RequestCounter) context.Context {
	return context.WithValue(ctx, counterKey{}, c)
}

// CounterFromContext returns the counter attached to ctx, or nil.
func CounterFromContext(ctx context.Context) *RequestCounter {
	c, _ := ctx.Value(counterKey{}).(*RequestCounter)
	return c
}
