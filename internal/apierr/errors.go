// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package apierr defines the error taxonomy shared by the HTTP layer, the
// fetcher, the cache and the sync engine.
//
// Every classified failure is an *Error carrying a Kind. Callers branch on the
// kind with errors.Is against the sentinel values:
//
//	if errors.Is(err, apierr.ErrNotFound) {
//	    return nil // absent sub-resource
//	}
//
// The original cause is always kept and reachable through errors.Unwrap.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindRateLimitExhausted
	KindRetryExhausted
	KindNetwork
	KindConnection
	KindTimeout
	KindAPI
	KindSync
	KindParse
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindConfiguration:      "configuration",
	KindAuthentication:     "authentication",
	KindAuthorization:      "authorization",
	KindNotFound:           "not_found",
	KindValidation:         "validation",
	KindRateLimitExhausted: "rate_limit_exhausted",
	KindRetryExhausted:     "retry_exhausted",
	KindNetwork:            "network",
	KindConnection:         "connection",
	KindTimeout:            "timeout",
	KindAPI:                "api",
	KindSync:               "sync",
	KindParse:              "parse",
}

// String returns the snake_case kind name, also used as a metrics label.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Sentinel errors, one per kind. An *Error matches the sentinel of its kind.
var (
	ErrConfiguration      = &sentinel{KindConfiguration}
	ErrAuthentication     = &sentinel{KindAuthentication}
	ErrAuthorization      = &sentinel{KindAuthorization}
	ErrNotFound           = &sentinel{KindNotFound}
	ErrValidation         = &sentinel{KindValidation}
	ErrRateLimitExhausted = &sentinel{KindRateLimitExhausted}
	ErrRetryExhausted     = &sentinel{KindRetryExhausted}
	ErrNetwork            = &sentinel{KindNetwork}
	ErrConnection         = &sentinel{KindConnection}
	ErrTimeout            = &sentinel{KindTimeout}
	ErrAPI                = &sentinel{KindAPI}
	ErrSync               = &sentinel{KindSync}
	ErrParse              = &sentinel{KindParse}
)

type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation, for example "GET /v2/project_sessions".
	Op string
	// Status is the HTTP status code when the failure came from a response.
	Status int
	// Body is a truncated copy of the response body, if any.
	Body string
	// Attempts is the number of attempts made before giving up (retry kinds only).
	Attempts int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == e.Kind
}

// New creates a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a classified error with a formatted cause.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Sync wraps a failure that occurred inside the fetch/diff/sync orchestration.
// The original cause stays reachable, including its own kind.
func Sync(op string, err error) *Error {
	return &Error{Kind: KindSync, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
// A Sync wrapper is skipped so that callers see the root classification;
// use errors.Is(err, ErrSync) to detect the wrapper itself.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindSync {
			return e.Kind
		}
		if e.Err == nil {
			return KindSync
		}
		err = e.Err
	}
	return KindUnknown
}

// IsFatalForRun reports whether the error must abort the whole run rather
// than a single record.
func IsFatalForRun(err error) bool {
	switch KindOf(err) {
	case KindConfiguration, KindAuthentication, KindAuthorization:
		return true
	default:
		return false
	}
}

// IsClientError reports whether the error is a classified client or auth
// failure (400, 401, 403). These are never degraded to defaults.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindAuthentication, KindAuthorization, KindValidation:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether the failure class is transient.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindConnection, KindTimeout, KindAPI:
		return true
	default:
		return false
	}
}
