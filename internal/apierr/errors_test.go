// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package apierr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorIsSentinel(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindNotFound, Op: "GET /v2/rules/7", Status: 404}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrAPI) {
		t.Error("did not expect errors.Is(err, ErrAPI)")
	}

	wrapped := fmt.Errorf("fetch skills: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected sentinel match through fmt wrapping")
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindRetryExhausted, Op: "GET /v2/scales/3", Attempts: 4, Err: io.ErrUnexpectedEOF}
	msg := err.Error()
	for _, want := range []string{"GET /v2/scales/3", "retry_exhausted", "after 4 attempts", "unexpected EOF"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause reachable via errors.Is")
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"direct", New(KindParse, "decode", io.EOF), KindParse},
		{"sync wrapper skipped", Sync("list sessions", New(KindAuthentication, "GET", nil)), KindAuthentication},
		{"bare sync", Sync("diff", errors.New("x")), KindUnknown},
		{"sync without cause", &Error{Kind: KindSync}, KindSync},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassificationHelpers(t *testing.T) {
	t.Parallel()

	auth := New(KindAuthentication, "GET", nil)
	if !IsFatalForRun(auth) || !IsClientError(auth) || IsRetryable(auth) {
		t.Error("authentication should be fatal, client, non-retryable")
	}

	notFound := New(KindNotFound, "GET", nil)
	if IsFatalForRun(notFound) || IsClientError(notFound) {
		t.Error("not found should be neither fatal nor a client error")
	}

	timeout := New(KindTimeout, "GET", nil)
	if !IsRetryable(timeout) {
		t.Error("timeout should be retryable")
	}

	if !errors.Is(Sync("run", auth), ErrSync) {
		t.Error("expected sync wrapper to match ErrSync")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	if KindRateLimitExhausted.String() != "rate_limit_exhausted" {
		t.Errorf("unexpected name %q", KindRateLimitExhausted.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("unexpected name for unknown kind")
	}
}
