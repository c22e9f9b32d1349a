// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
	if cfg.File != "" {
		t.Errorf("expected no default log file, got %q", cfg.File)
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	if err := Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = Init(DefaultConfig()) }()

	Info().Str("phase", "fetch").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"phase":"fetch"`) {
		t.Errorf("expected structured field in output, got: %s", output)
	}
}

func TestInitWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "intrasync.log")

	if err := Init(Config{Level: "info", Format: "console", Output: &buf, File: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info().Msg("copied to file")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	_ = Init(DefaultConfig())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"copied to file"`) {
		t.Errorf("expected JSON line in log file, got: %s", data)
	}
	if !strings.Contains(buf.String(), "copied to file") {
		t.Errorf("expected console output, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer func() { _ = Init(DefaultConfig()) }()

	Err(os.ErrNotExist).Msg("failed")

	if !strings.Contains(buf.String(), `"error":"file does not exist"`) {
		t.Errorf("expected error field, got: %s", buf.String())
	}
}
