// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package validation

import (
	"strings"
	"testing"
)

type cacheSection struct {
	Backend string `koanf:"backend" validate:"oneof=sqlite badger"`
	Path    string `koanf:"path" validate:"required"`
}

type syncSection struct {
	BatchSize int `koanf:"batch_size" validate:"min=1,max=1000"`
}

type testConfig struct {
	Cache   cacheSection `koanf:"cache"`
	Sync    syncSection  `koanf:"sync"`
	URL     string       `koanf:"api_url" validate:"omitempty,url"`
	Name    string       `validate:"omitempty,min=3"`
	Ignored int          `koanf:"-" validate:"gte=0"`
}

func validConfig() testConfig {
	return testConfig{
		Cache: cacheSection{Backend: "sqlite", Path: "/tmp/cache.db"},
		Sync:  syncSection{BatchSize: 50},
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*testConfig)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing path",
			mutate:    func(c *testConfig) { c.Cache.Path = "" },
			wantField: "cache.path",
			wantTag:   "required",
			wantMsg:   "cache.path is required",
		},
		{
			name:      "unknown backend",
			mutate:    func(c *testConfig) { c.Cache.Backend = "redis" },
			wantField: "cache.backend",
			wantTag:   "oneof",
			wantMsg:   "cache.backend must be one of: sqlite badger",
		},
		{
			name:      "batch size too small",
			mutate:    func(c *testConfig) { c.Sync.BatchSize = 0 },
			wantField: "sync.batch_size",
			wantTag:   "min",
			wantMsg:   "sync.batch_size must be at least 1",
		},
		{
			name:      "batch size too large",
			mutate:    func(c *testConfig) { c.Sync.BatchSize = 5000 },
			wantField: "sync.batch_size",
			wantTag:   "max",
			wantMsg:   "sync.batch_size must be at most 1000",
		},
		{
			name:      "relative url",
			mutate:    func(c *testConfig) { c.URL = "localhost" },
			wantField: "api_url",
			wantTag:   "url",
			wantMsg:   "api_url must be an absolute URL",
		},
		{
			name:      "field without koanf tag",
			mutate:    func(c *testConfig) { c.Name = "ab" },
			wantField: "Name",
			wantTag:   "min",
			wantMsg:   "Name must be at least 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			verr := ValidateStruct(&cfg)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Cache.Path = ""
	cfg.Sync.BatchSize = 0

	verr := ValidateStruct(&cfg)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(verr.Errors()))
	}
	msg := verr.Error()
	for _, want := range []string{"cache.path is required", "sync.batch_size must be at least 1", "; "} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestValidationError_Param(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Sync.BatchSize = 2000
	verr := ValidateStruct(&cfg)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	e := verr.Errors()[0]
	if e.Param() != "1000" {
		t.Errorf("Param() = %q, want 1000", e.Param())
	}
	if v, ok := e.Value().(int); !ok || v != 2000 {
		t.Errorf("Value() = %v, want 2000", e.Value())
	}
}

func TestRequestValidationError_Empty(t *testing.T) {
	t.Parallel()

	var verr RequestValidationError
	if verr.Error() != "validation failed" {
		t.Errorf("Error() = %q", verr.Error())
	}
}
