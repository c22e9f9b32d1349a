// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package models defines the project session record that flows through the
fetch, cache, diff and sync stages.

Key Components:

  - ProjectSession: one 42 project session plus its enrichment (skills,
    attachments, rules, correction count, team outcomes)
  - Rule, Skill, Attachment: enrichment sub-records
  - ListingItem: the raw element of the /v2/project_sessions listing

Nullable upstream scalars are pointers. After enrichment every collection is
non-nil, so the JSON form of a record is stable between runs, which is what
Equal relies on.

Usage Example:

	var items []models.ListingItem
	_ = json.Unmarshal(body, &items)
	sessions := models.FromListingItems(items)

	same, err := models.Equal(fetched, cached)
*/
package models
