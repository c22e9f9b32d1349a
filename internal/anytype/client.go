// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package anytype

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/auth"
	"github.com/tomtom215/intrasync/internal/httpclient"
	"github.com/tomtom215/intrasync/internal/logging"
)

// Defaults for the local Anytype API.
const (
	DefaultBaseURL = "http://localhost:3030"
	DefaultVersion = "2025-05-20"
)

// Config locates the Anytype space.
type Config struct {
	BaseURL string `koanf:"api_url" validate:"omitempty,url"`
	APIKey  string `koanf:"api_key"`
	SpaceID string `koanf:"space_id"`
	// ObjectsID is the collection objects are filed under, when set.
	ObjectsID string `koanf:"objects_id"`
	Version   string `koanf:"version"`
}

// Client talks to the Anytype API.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	auth    auth.Provider
	breaker *breaker
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBreaker replaces the default breaker settings.
func WithBreaker(cfg BreakerConfig) ClientOption {
	return func(c *Client) { c.breaker = newBreaker(cfg) }
}

// WithAuth replaces the bearer-token provider built from Config.APIKey.
func WithAuth(p auth.Provider) ClientOption {
	return func(c *Client) { c.auth = p }
}

// NewClient creates a client. hc carries pacing and retries; bulk creates
// are usually given a client with MaxRetries 0 so that a failed batch falls
// back to per-object creates instead of re-posting the whole batch.
func NewClient(cfg Config, hc *httpclient.Client, opts ...ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}

	c := &Client{
		cfg:  cfg,
		http: hc,
		auth: auth.NewStatic(cfg.APIKey, http.Header{"Anytype-Version": []string{cfg.Version}}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(DefaultBreakerConfig())
	}
	return c
}

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

func (c *Client) objectsPath() string {
	return "/v1/spaces/" + url.PathEscape(c.cfg.SpaceID) + "/objects"
}

// CreateObjects creates objects in one bulk call. The returned results are
// aligned with objects; per-object failures are reported in Result.Error
// rather than as an error. An error means the whole call failed.
func (c *Client) CreateObjects(ctx context.Context, objects []Object) ([]Result, error) {
	if len(objects) == 0 {
		return nil, nil
	}

	var out struct {
		Results []Result `json:"results"`
	}
	payload := struct {
		Objects []Object `json:"objects"`
	}{Objects: objects}

	op := fmt.Sprintf("anytype bulk create (%d objects)", len(objects))
	if err := c.call(ctx, http.MethodPost, c.objectsPath()+"/batch", payload, op, &out); err != nil {
		return nil, err
	}
	if len(out.Results) != len(objects) {
		return nil, apierr.Newf(apierr.KindParse, op, "got %d results for %d objects", len(out.Results), len(objects))
	}
	return out.Results, nil
}

// CreateObject creates one object.
func (c *Client) CreateObject(ctx context.Context, obj Object) (Result, error) {
	op := fmt.Sprintf("anytype create %q", obj.Name)
	return c.single(ctx, http.MethodPost, c.objectsPath(), obj, op)
}

// UpdateObject replaces the content of an existing object.
func (c *Client) UpdateObject(ctx context.Context, objectID string, obj Object) (Result, error) {
	if objectID == "" {
		return Result{}, apierr.Newf(apierr.KindValidation, "anytype update", "object id is empty")
	}
	op := fmt.Sprintf("anytype update %s", objectID)
	res, err := c.single(ctx, http.MethodPatch, c.objectsPath()+"/"+url.PathEscape(objectID), obj, op)
	if err == nil && res.ID == "" {
		res.ID = objectID
	}
	return res, err
}

// AddToCollection files objectIDs under the configured collection
// (Config.ObjectsID). It is a no-op when no collection is configured.
func (c *Client) AddToCollection(ctx context.Context, objectIDs []string) error {
	if c.cfg.ObjectsID == "" || len(objectIDs) == 0 {
		return nil
	}
	path := "/v1/spaces/" + url.PathEscape(c.cfg.SpaceID) + "/lists/" + url.PathEscape(c.cfg.ObjectsID) + "/objects"
	payload := struct {
		Objects []string `json:"objects"`
	}{Objects: objectIDs}
	op := fmt.Sprintf("anytype add %d objects to collection %s", len(objectIDs), c.cfg.ObjectsID)
	return c.call(ctx, http.MethodPost, path, payload, op, nil)
}

// single sends one object and reads {"object":{...}}. A bare object or an
// "error" key at the top level are accepted too.
func (c *Client) single(ctx context.Context, method, path string, obj Object, op string) (Result, error) {
	var raw map[string]json.RawMessage
	if err := c.call(ctx, method, path, obj, op, &raw); err != nil {
		return Result{}, err
	}

	var res Result
	body := raw["object"]
	if body == nil {
		b, err := json.Marshal(raw)
		if err != nil {
			return Result{}, apierr.New(apierr.KindParse, op, err)
		}
		body = b
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return Result{}, apierr.New(apierr.KindParse, op, err)
	}
	if res.Error == "" {
		if e, ok := raw["error"]; ok {
			res.Error = errorText(e)
		}
	}
	if res.Failed() {
		return res, apierr.Newf(apierr.KindAPI, op, "%s", res.Error)
	}
	return res, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, op string, v any) error {
	headers, err := c.auth.Headers(ctx)
	if err != nil {
		return err
	}

	resp, err := c.breaker.execute(op, func() (*httpclient.Response, error) {
		resp, err := c.http.Do(ctx, httpclient.Request{
			Method: method,
			URL:    c.cfg.BaseURL + path,
			Header: headers,
			Body:   body,
		})
		if err != nil {
			return nil, err
		}
		return resp, httpclient.CheckStatus(resp, op)
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("op", op).Msg("Anytype call failed")
		return err
	}
	if v == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.DecodeJSON(v)
}
