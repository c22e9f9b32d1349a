// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package auth supplies the request headers that authenticate outbound calls.

Callers only see the Provider interface; token contents are never inspected
outside this package.

Providers:

  - Static: a fixed bearer token (the Anytype API key)
  - ClientCredentials: OAuth2 client-credentials grant against the 42 token
    endpoint, cached in memory and persisted to a token file with mode 0600
    so consecutive runs reuse a still-valid token

Usage:

	p, err := auth.NewClientCredentials(auth.CredentialsConfig{
	    ClientID:     cfg.FortyTwo.ClientID,
	    ClientSecret: cfg.FortyTwo.ClientSecret,
	    TokenFile:    cfg.FortyTwo.TokenFile,
	})
	h, err := p.Headers(ctx) // Authorization: Bearer ...
*/
package auth
