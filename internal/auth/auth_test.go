// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/tomtom215/intrasync/internal/apierr"
)

func tokenServer(t *testing.T, status int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/oauth/token", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		if err := req.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if req.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", req.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-abcdefghij","token_type":"bearer","expires_in":7200}`))
	})
	return httptest.NewServer(r)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	p := NewStatic("key123", http.Header{"Anytype-Version": {"2025-05-20"}})
	h, err := p.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer key123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := h.Get("Anytype-Version"); got != "2025-05-20" {
		t.Errorf("Anytype-Version = %q", got)
	}

	h.Set("Authorization", "mutated")
	h2, _ := p.Headers(context.Background())
	if h2.Get("Authorization") != "Bearer key123" {
		t.Error("returned headers must not alias provider state")
	}
}

func TestStaticEmptyToken(t *testing.T) {
	t.Parallel()

	_, err := NewStatic("", nil).Headers(context.Background())
	if !errors.Is(err, apierr.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestNewClientCredentialsRequiresSecrets(t *testing.T) {
	t.Parallel()

	if _, err := NewClientCredentials(CredentialsConfig{ClientID: "uid"}); !errors.Is(err, apierr.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestClientCredentialsFetchesAndPersists(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := tokenServer(t, http.StatusOK, &calls)
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "nested", "token.json")
	p, err := NewClientCredentials(CredentialsConfig{
		ClientID:     "uid",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/oauth/token",
		TokenFile:    tokenFile,
	})
	if err != nil {
		t.Fatalf("NewClientCredentials() error = %v", err)
	}

	h, err := p.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer tok-abcdefghij" {
		t.Errorf("Authorization = %q", got)
	}

	// Second call is served from memory.
	if _, err := p.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("token endpoint calls = %d, want 1", calls.Load())
	}

	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	// A new provider (next run) reuses the persisted token.
	p2, _ := NewClientCredentials(CredentialsConfig{
		ClientID:     "uid",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/oauth/token",
		TokenFile:    tokenFile,
	})
	if _, err := p2.Headers(context.Background()); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("token endpoint calls = %d, want persisted token reuse", calls.Load())
	}
}

func TestClientCredentialsExpiredFileRefetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := tokenServer(t, http.StatusOK, &calls)
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	expired := &oauth2.Token{AccessToken: "old", TokenType: "bearer", Expiry: time.Now().Add(-time.Hour)}
	if err := SaveToken(tokenFile, expired); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	p, _ := NewClientCredentials(CredentialsConfig{
		ClientID:     "uid",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/oauth/token",
		TokenFile:    tokenFile,
	})
	tok, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "tok-abcdefghij" {
		t.Errorf("AccessToken = %q, want fresh token", tok.AccessToken)
	}
	if calls.Load() != 1 {
		t.Errorf("token endpoint calls = %d, want 1", calls.Load())
	}
}

func TestClientCredentialsRejected(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := tokenServer(t, http.StatusUnauthorized, &calls)
	defer server.Close()

	p, _ := NewClientCredentials(CredentialsConfig{
		ClientID:     "uid",
		ClientSecret: "wrong",
		TokenURL:     server.URL + "/oauth/token",
	})
	_, err := p.Headers(context.Background())
	if !errors.Is(err, apierr.ErrAuthentication) {
		t.Errorf("error = %v, want authentication error", err)
	}
	if !apierr.IsFatalForRun(err) {
		t.Error("token rejection must be fatal for the run")
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := tokenServer(t, http.StatusOK, &calls)
	defer server.Close()

	p, _ := NewClientCredentials(CredentialsConfig{
		ClientID:     "uid",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/oauth/token",
	})
	_, _ = p.Token(context.Background())
	p.Invalidate()
	_, _ = p.Token(context.Background())
	if calls.Load() != 2 {
		t.Errorf("token endpoint calls = %d, want 2", calls.Load())
	}
}
