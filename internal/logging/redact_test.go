// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package logging

import (
	"strings"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", "[empty]"},
		{"short", "****"},
		{"abcdefghijkl", "abcd****"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeBody(t *testing.T) {
	t.Parallel()

	body := `{"access_token":"supersecretvalue","note":"Authorization: Bearer anothersecret1"}`
	got := SanitizeBody(body)

	if strings.Contains(got, "supersecretvalue") || strings.Contains(got, "anothersecret1") {
		t.Errorf("expected secrets masked, got %s", got)
	}
	if !strings.Contains(got, `"access_token":"supe****"`) {
		t.Errorf("expected masked access token, got %s", got)
	}
}

func TestSanitizeBodyTruncates(t *testing.T) {
	t.Parallel()

	got := SanitizeBody(strings.Repeat("x", 2000))
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Errorf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
	if len(got) > maxBodyLen+len("...(truncated)") {
		t.Errorf("body too long: %d", len(got))
	}
}
