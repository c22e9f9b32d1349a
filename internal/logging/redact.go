// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package logging

import (
	"strings"
)

// maxBodyLen bounds response bodies copied into log lines.
const maxBodyLen = 500

// SanitizeToken masks a credential, keeping only the first 4 characters.
// Returns "[empty]" for an empty input.
func SanitizeToken(token string) string {
	if token == "" {
		return "[empty]"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}

// SanitizeBody truncates a response body for logging and masks any bearer
// token or access_token value that an upstream echoed back.
func SanitizeBody(body string) string {
	body = maskAfter(body, "Bearer ")
	body = maskAfter(body, `"access_token":"`)
	body = maskAfter(body, `"client_secret":"`)
	return truncateString(body, maxBodyLen)
}

// maskAfter replaces the token following each occurrence of prefix.
func maskAfter(s, prefix string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, prefix)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i+len(prefix)])
		rest := s[i+len(prefix):]
		end := strings.IndexAny(rest, "\" \n\r\t,}")
		if end < 0 {
			end = len(rest)
		}
		b.WriteString(SanitizeToken(rest[:end]))
		s = rest[end:]
	}
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
