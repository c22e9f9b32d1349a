// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/intrasync/internal/apierr"
)

// Provider returns the headers to attach to an outbound request.
type Provider interface {
	Headers(ctx context.Context) (http.Header, error)
}

// Invalidator is implemented by providers whose credentials can be dropped
// and fetched again after the upstream rejects them.
type Invalidator interface {
	Invalidate()
}

// ErrMissingToken is returned by Static when no token is configured.
var ErrMissingToken = errors.New("auth: token is empty")

// Static is a Provider with a fixed bearer token.
type Static struct {
	token string
	extra http.Header
}

// NewStatic returns a Provider sending "Authorization: Bearer <token>" plus
// any extra headers.
func NewStatic(token string, extra http.Header) *Static {
	return &Static{token: token, extra: extra.Clone()}
}

// Headers implements Provider.
func (s *Static) Headers(context.Context) (http.Header, error) {
	if s.token == "" {
		return nil, apierr.New(apierr.KindConfiguration, "auth", ErrMissingToken)
	}
	h := s.extra.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Authorization", "Bearer "+s.token)
	return h, nil
}
