// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/ratelimit"
)

const (
	// maxErrorBodySize limits how much of an error response is kept (64KB).
	maxErrorBodySize = 64 * 1024
	// maxBodySize limits successful response bodies (32MB).
	maxBodySize = 32 << 20
)

// Config controls retries and timeouts.
type Config struct {
	// Name labels metrics and log lines ("fortytwo", "anytype").
	Name string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the first backoff step.
	BaseDelay time.Duration
	// MaxDelay caps every backoff step.
	MaxDelay time.Duration
	// Timeout bounds a single attempt, including reading the body.
	Timeout time.Duration
	// UserAgent is sent on every request when set.
	UserAgent string
}

// DefaultConfig returns the retry policy used for the 42 API.
func DefaultConfig() Config {
	return Config{
		Name:       "default",
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   60 * time.Second,
		Timeout:    30 * time.Second,
		UserAgent:  "intrasync",
	}
}

// Request describes one logical call. Body, when non-nil, is JSON encoded.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   any
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &apierr.Error{
			Kind:   apierr.KindParse,
			Status: r.Status,
			Body:   logging.SanitizeBody(string(r.Body)),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// Client is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *ratelimit.Limiter
	sleep   ratelimit.SleepFunc
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleep overrides the sleep used between retries.
func WithSleep(s ratelimit.SleepFunc) Option {
	return func(c *Client) { c.sleep = s }
}

// New creates a Client. A nil limiter disables pacing and quota handling.
func New(cfg Config, limiter *ratelimit.Limiter, opts ...Option) *Client {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{}, ratelimit.WithName(cfg.Name))
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		sleep:   ratelimit.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Do executes req, retrying per the package policy. A non-nil Response is
// returned for 2xx and for the non-retryable 400/401/403/404 statuses; the
// caller decides what those mean via CheckStatus.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, apierr.New(apierr.KindConfiguration, method+" "+req.URL, fmt.Errorf("parse url: %w", err))
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, apierr.New(apierr.KindValidation, method+" "+target.Path, fmt.Errorf("encode body: %w", err))
		}
	}

	op := method + " " + target.Path
	endpoint := EndpointPattern(target.Path)
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.WaitIfNeeded(ctx); err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, method, target.String(), req.Header, payload, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = apierr.New(classifyTransport(err), op, err)
			if attempt == c.cfg.MaxRetries {
				return nil, &apierr.Error{Kind: apierr.KindRetryExhausted, Op: op, Attempts: attempt + 1, Err: lastErr}
			}
			delay := Backoff(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)
			logging.Warn().
				Str("client", c.cfg.Name).
				Str("op", op).
				Err(err).
				Int("attempt", attempt+1).
				Dur("retry_delay", delay).
				Msg("Request failed, retrying")
			metrics.RecordRetry(c.cfg.Name, "transport")
			if err := c.wait(ctx, "backoff", delay); err != nil {
				return nil, err
			}
			continue
		}

		if err := c.limiter.CheckAndWait(ctx, resp.Header); err != nil {
			return nil, err
		}

		switch {
		case resp.Status >= 200 && resp.Status < 300:
			return resp, nil

		case isTerminalClientStatus(resp.Status):
			return resp, nil

		case resp.Status == http.StatusTooManyRequests:
			if attempt == c.cfg.MaxRetries {
				return nil, &apierr.Error{
					Kind:     apierr.KindRateLimitExhausted,
					Op:       op,
					Status:   resp.Status,
					Body:     logging.SanitizeBody(string(resp.Body)),
					Attempts: attempt + 1,
				}
			}
			delay, ok := c.limiter.RetryAfter(resp.Header)
			reason := "retry_after"
			if !ok {
				delay = Backoff(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)
				reason = "backoff"
			}
			logging.Warn().
				Str("client", c.cfg.Name).
				Str("op", op).
				Dur("retry_delay", delay).
				Int("attempt", attempt+1).
				Int("max_retries", c.cfg.MaxRetries).
				Msg("Rate limited (HTTP 429), retrying")
			metrics.RecordRetry(c.cfg.Name, "rate_limited")
			if err := c.wait(ctx, reason, delay); err != nil {
				return nil, err
			}

		default:
			if attempt == c.cfg.MaxRetries {
				return nil, &apierr.Error{
					Kind:     apierr.KindAPI,
					Op:       op,
					Status:   resp.Status,
					Body:     logging.SanitizeBody(string(resp.Body)),
					Attempts: attempt + 1,
				}
			}
			delay := Backoff(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)
			logging.Warn().
				Str("client", c.cfg.Name).
				Str("op", op).
				Int("status", resp.Status).
				Dur("retry_delay", delay).
				Int("attempt", attempt+1).
				Msg("Server error, retrying")
			metrics.RecordRetry(c.cfg.Name, "server_error")
			if err := c.wait(ctx, "backoff", delay); err != nil {
				return nil, err
			}
		}
	}

	// Only reachable with a negative retry count, which New prevents.
	return nil, &apierr.Error{Kind: apierr.KindRetryExhausted, Op: op, Err: lastErr}
}

// JSON executes req, maps the status with CheckStatus and decodes a 2xx body
// into v (when v is non-nil).
func (c *Client) JSON(ctx context.Context, req Request, resource string, v any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := CheckStatus(resp, resource); err != nil {
		return err
	}
	if v == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.DecodeJSON(v)
}

func (c *Client) send(ctx context.Context, method, rawURL string, header http.Header, payload []byte, endpoint string) (*Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.RecordAPIRequest(c.cfg.Name, method, endpoint, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	var data []byte
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			metrics.RecordAPIRequest(c.cfg.Name, method, endpoint, 0, time.Since(start))
			return nil, fmt.Errorf("read response body: %w", err)
		}
	} else {
		data = readBodyForError(resp.Body)
	}
	metrics.RecordAPIRequest(c.cfg.Name, method, endpoint, resp.StatusCode, time.Since(start))

	logging.Trace().
		Str("client", c.cfg.Name).
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) wait(ctx context.Context, reason string, d time.Duration) error {
	metrics.RecordRateLimitWait(c.cfg.Name, reason, d)
	return c.sleep(ctx, d)
}

func isTerminalClientStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	default:
		return false
	}
}

// Backoff returns min(base * 2^attempt, max). It never overflows.
func Backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if maxDelay > 0 && base >= maxDelay {
		return maxDelay
	}
	d := base
	for i := 0; i < attempt; i++ {
		if d > (1<<62)/2 {
			d = 1 << 62
			break
		}
		d *= 2
		if maxDelay > 0 && d >= maxDelay {
			return maxDelay
		}
	}
	return d
}

// CheckStatus maps a response status to the error taxonomy. resource names
// what was requested, for example "rule 42".
func CheckStatus(resp *Response, resource string) error {
	if resp == nil {
		return apierr.Newf(apierr.KindAPI, resource, "no response")
	}
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}

	var kind apierr.Kind
	switch resp.Status {
	case http.StatusBadRequest:
		kind = apierr.KindValidation
	case http.StatusUnauthorized:
		kind = apierr.KindAuthentication
	case http.StatusForbidden:
		kind = apierr.KindAuthorization
	case http.StatusNotFound:
		kind = apierr.KindNotFound
	default:
		kind = apierr.KindAPI
	}
	return &apierr.Error{
		Kind:   kind,
		Op:     resource,
		Status: resp.Status,
		Body:   logging.SanitizeBody(string(resp.Body)),
	}
}

var idSegment = regexp.MustCompile(`/\d+`)

// EndpointPattern replaces numeric path segments with "*" so that the result
// is usable as a low-cardinality metrics label.
func EndpointPattern(path string) string {
	return idSegment.ReplaceAllString(path, "/*")
}

// readBodyForError reads a limited amount of the response body for error messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

func classifyTransport(err error) apierr.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierr.KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return apierr.KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return apierr.KindConnection
	}
	return apierr.KindNetwork
}
