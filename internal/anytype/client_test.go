// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package anytype

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/httpclient"
	"github.com/tomtom215/intrasync/internal/ratelimit"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfg := httpclient.DefaultConfig()
	cfg.Name = "anytype-test"
	cfg.MaxRetries = 0
	hc := httpclient.New(cfg, ratelimit.New(ratelimit.Config{}), httpclient.WithSleep(func(context.Context, time.Duration) error { return nil }))

	breakerCfg := DefaultBreakerConfig()
	breakerCfg.Name = t.Name()
	opts = append([]ClientOption{WithBreaker(breakerCfg)}, opts...)

	return NewClient(Config{BaseURL: server.URL + "/", APIKey: "key", SpaceID: "space-1", ObjectsID: "list-9"}, hc, opts...)
}

func TestCreateObjects(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/v1/spaces/{space}/objects/batch", func(w http.ResponseWriter, req *http.Request) {
		if got := chi.URLParam(req, "space"); got != "space-1" {
			t.Errorf("space = %q", got)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := req.Header.Get("Anytype-Version"); got != DefaultVersion {
			t.Errorf("Anytype-Version = %q", got)
		}
		var body struct {
			Objects []Object `json:"objects"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Objects) != 3 || body.Objects[1].Name != "b" {
			t.Errorf("objects = %+v", body.Objects)
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{
			map[string]any{"id": "obj-a"},
			map[string]any{"object_id": "obj-b"},
			map[string]any{"error": map[string]any{"code": "bad_request", "message": "invalid property"}},
		}})
	})
	c := newTestClient(t, r)

	results, err := c.CreateObjects(context.Background(), []Object{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	if err != nil {
		t.Fatalf("CreateObjects() error = %v", err)
	}
	if results[0].ID != "obj-a" || results[1].ID != "obj-b" {
		t.Errorf("ids = %q, %q", results[0].ID, results[1].ID)
	}
	if !results[2].Failed() || results[2].Error != "bad_request: invalid property" {
		t.Errorf("results[2] = %+v, want failure", results[2])
	}
}

func TestCreateObjectsMisalignedResponse(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/v1/spaces/{space}/objects/batch", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{map[string]any{"id": "x"}}})
	})
	c := newTestClient(t, r)

	_, err := c.CreateObjects(context.Background(), []Object{{Name: "a"}, {Name: "b"}})
	if apierr.KindOf(err) != apierr.KindParse {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestCreateObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		response any
		wantID   string
		wantKind apierr.Kind
	}{
		{"wrapped", http.StatusOK, map[string]any{"object": map[string]any{"id": "obj-1", "name": "x"}}, "obj-1", apierr.KindUnknown},
		{"bare", http.StatusCreated, map[string]any{"object_id": "obj-2"}, "obj-2", apierr.KindUnknown},
		{"error key", http.StatusOK, map[string]any{"error": "duplicate"}, "", apierr.KindAPI},
		{"bad request", http.StatusBadRequest, map[string]any{"message": "nope"}, "", apierr.KindValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := chi.NewRouter()
			r.Post("/v1/spaces/{space}/objects", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.response)
			})
			c := newTestClient(t, r)

			res, err := c.CreateObject(context.Background(), Object{Name: "x"})
			if got := apierr.KindOf(err); got != tt.wantKind {
				t.Fatalf("error kind = %v (%v), want %v", got, err, tt.wantKind)
			}
			if res.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", res.ID, tt.wantID)
			}
		})
	}
}

func TestUpdateObject(t *testing.T) {
	t.Parallel()

	var gotID atomic.Value
	r := chi.NewRouter()
	r.Patch("/v1/spaces/{space}/objects/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotID.Store(chi.URLParam(req, "id"))
		writeJSON(w, http.StatusOK, map[string]any{"object": map[string]any{"name": "x"}})
	})
	c := newTestClient(t, r)

	res, err := c.UpdateObject(context.Background(), "obj-7", Object{Name: "x"})
	if err != nil {
		t.Fatalf("UpdateObject() error = %v", err)
	}
	if gotID.Load() != "obj-7" {
		t.Errorf("path id = %v", gotID.Load())
	}
	if res.ID != "obj-7" {
		t.Errorf("ID = %q, want the requested id", res.ID)
	}

	if _, err := c.UpdateObject(context.Background(), "", Object{}); apierr.KindOf(err) != apierr.KindValidation {
		t.Errorf("empty id error = %v, want validation", err)
	}
}

func TestAddToCollection(t *testing.T) {
	t.Parallel()

	var got []string
	r := chi.NewRouter()
	r.Post("/v1/spaces/{space}/lists/{list}/objects", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "list") != "list-9" {
			t.Errorf("list = %q", chi.URLParam(req, "list"))
		}
		var body struct {
			Objects []string `json:"objects"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		got = body.Objects
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, r)

	if err := c.AddToCollection(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("AddToCollection() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("objects = %v", got)
	}
	if err := c.AddToCollection(context.Background(), nil); err != nil {
		t.Errorf("AddToCollection(nil) error = %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Parallel()

	hc := httpclient.New(httpclient.DefaultConfig(), nil)
	c := NewClient(Config{SpaceID: "s"}, hc, WithBreaker(BreakerConfig{Name: t.Name(), MinRequests: 10, FailureRatio: 0.6}))
	_, err := c.CreateObject(context.Background(), Object{Name: "x"})
	if !errors.Is(err, apierr.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	r := chi.NewRouter()
	r.Post("/v1/spaces/{space}/objects", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, r)

	for i := 0; i < 10; i++ {
		if _, err := c.CreateObject(context.Background(), Object{Name: "x"}); err == nil {
			t.Fatalf("call %d succeeded against a failing server", i)
		}
	}
	if got := c.BreakerState(); got != "open" {
		t.Fatalf("breaker state = %q, want open", got)
	}

	_, err := c.CreateObject(context.Background(), Object{Name: "x"})
	if apierr.KindOf(err) != apierr.KindAPI {
		t.Errorf("rejected call error = %v, want api error", err)
	}
	if got := hits.Load(); got != 10 {
		t.Errorf("server hits = %d, want 10 (open breaker must not call out)", got)
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/v1/spaces/{space}/objects", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	c := newTestClient(t, r)

	for i := 0; i < 12; i++ {
		_, _ = c.CreateObject(context.Background(), Object{Name: "x"})
	}
	if got := c.BreakerState(); got != "closed" {
		t.Errorf("breaker state = %q, want closed", got)
	}
}
