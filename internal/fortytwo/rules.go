// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package fortytwo

import (
	"strings"

	"github.com/tomtom215/intrasync/internal/models"
)

var (
	forbiddenKeywords   = []string{"forbidden", "禁止", "not allowed", "not permitted"}
	recommendedKeywords = []string{"recommended", "推奨", "suggested", "should"}
)

// CategorizeRules splits rules into forbidden and recommended display texts.
//
// The text of a rule is its name, or its description when the name is
// empty; rules without text are skipped. Keyword matching is
// case-insensitive and forbidden keywords win. An optional inscription rule
// with no keyword match counts as recommended. Everything else is left
// uncategorized. This is a heuristic: the API has no field for it.
func CategorizeRules(rules []models.Rule) (forbidden, recommended []string) {
	forbidden = []string{}
	recommended = []string{}

	for _, r := range rules {
		text := r.Text()
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)

		switch {
		case containsAny(lower, forbiddenKeywords):
			forbidden = append(forbidden, text)
		case containsAny(lower, recommendedKeywords):
			recommended = append(recommended, text)
		case models.Deref(r.Kind) == "inscription" && r.Required != nil && !*r.Required:
			recommended = append(recommended, text)
		}
	}
	return forbidden, recommended
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
