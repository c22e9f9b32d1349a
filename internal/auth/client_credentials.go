// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/logging"
)

// DefaultTokenURL is the 42 OAuth2 token endpoint.
const DefaultTokenURL = "https://api.intra.42.fr/oauth/token"

// CredentialsConfig configures the client-credentials grant.
type CredentialsConfig struct {
	ClientID     string
	ClientSecret string
	// TokenURL defaults to DefaultTokenURL.
	TokenURL string
	Scopes   []string
	// TokenFile, when set, persists the token between runs.
	TokenFile string
}

// ClientCredentials is a Provider backed by the OAuth2 client-credentials
// grant. It is safe for concurrent use.
type ClientCredentials struct {
	cfg        clientcredentials.Config
	tokenFile  string
	httpClient *http.Client

	mu       sync.Mutex
	token    *oauth2.Token
	fileRead bool
}

var _ Invalidator = (*ClientCredentials)(nil)

// CredentialsOption customizes a ClientCredentials provider.
type CredentialsOption func(*ClientCredentials)

// WithTokenHTTPClient sets the HTTP client used against the token endpoint.
func WithTokenHTTPClient(hc *http.Client) CredentialsOption {
	return func(c *ClientCredentials) { c.httpClient = hc }
}

// NewClientCredentials validates cfg and returns a provider. No network
// call is made until the first Headers call.
func NewClientCredentials(cfg CredentialsConfig, opts ...CredentialsOption) (*ClientCredentials, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, apierr.Newf(apierr.KindConfiguration, "auth", "client id and secret are required")
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	c := &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		tokenFile: cfg.TokenFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Headers implements Provider.
func (c *ClientCredentials) Headers(ctx context.Context) (http.Header, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return h, nil
}

// Token returns a valid token, reusing the cached or persisted one when it
// has not expired.
func (c *ClientCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token, nil
	}

	if !c.fileRead && c.tokenFile != "" {
		c.fileRead = true
		tok, err := LoadToken(c.tokenFile)
		switch {
		case err == nil && tok.Valid():
			logging.Debug().Str("token_file", c.tokenFile).Msg("Reusing persisted access token")
			c.token = tok
			return tok, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			logging.Warn().Err(err).Str("token_file", c.tokenFile).Msg("Ignoring unreadable token file")
		}
	}

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	tok, err := c.cfg.Token(ctx)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	c.token = tok

	logging.Info().
		Time("expires_at", tok.Expiry).
		Str("token", logging.SanitizeToken(tok.AccessToken)).
		Msg("Obtained access token")

	if c.tokenFile != "" {
		if err := SaveToken(c.tokenFile, tok); err != nil {
			logging.Warn().Err(err).Str("token_file", c.tokenFile).Msg("Failed to persist access token")
		}
	}
	return tok, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.fileRead = true
	c.mu.Unlock()
}

// SaveToken writes tok as JSON with mode 0600, creating parent directories.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

func classifyTokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		status := rErr.Response.StatusCode
		kind := apierr.KindAPI
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized:
			kind = apierr.KindAuthentication
		case http.StatusForbidden:
			kind = apierr.KindAuthorization
		}
		return &apierr.Error{
			Kind:   kind,
			Op:     "POST /oauth/token",
			Status: status,
			Body:   logging.SanitizeBody(string(rErr.Body)),
			Err:    err,
		}
	}
	return apierr.New(apierr.KindNetwork, "POST /oauth/token", err)
}
