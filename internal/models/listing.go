// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package models

// ListingItem is one element of GET /v2/project_sessions.
type ListingItem struct {
	ID              int            `json:"id"`
	Project         *ListedProject `json:"project"`
	Cursus          *ListedCursus  `json:"cursus"`
	MaxPeople       *int           `json:"max_people"`
	Solo            *bool          `json:"solo"`
	IsSubscriptable *bool          `json:"is_subscriptable"`
	BeginAt         *string        `json:"begin_at"`
	EndAt           *string        `json:"end_at"`
	Status          *string        `json:"status"`
	CreatedAt       *string        `json:"created_at"`
}

// ListedProject is the project object nested in a listing element.
type ListedProject struct {
	ID          *int    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Difficulty  *int    `json:"difficulty"`
	Tags        []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// ListedCursus is the cursus object nested in a listing element.
type ListedCursus struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// FromListing builds an un-enriched session from a listing element.
func FromListing(item ListingItem) ProjectSession {
	s := ProjectSession{
		ID:              item.ID,
		CreationDate:    item.CreatedAt,
		MaxPeople:       item.MaxPeople,
		Solo:            item.Solo,
		IsSubscriptable: item.IsSubscriptable,
		BeginAt:         item.BeginAt,
		EndAt:           item.EndAt,
		Status:          item.Status,
	}

	if p := item.Project; p != nil {
		s.ProjectID = p.ID
		s.ProjectName = p.Name
		s.ProjectSlug = p.Slug
		s.Description = p.Description
		s.XP = p.Difficulty
		s.Keywords = make([]string, 0, len(p.Tags))
		for _, tag := range p.Tags {
			s.Keywords = append(s.Keywords, tag.Name)
		}
	}

	if c := item.Cursus; c != nil {
		s.CursusID = c.ID
		s.CursusName = c.Name
		s.CursusSlug = c.Slug
	}

	s.Normalize()
	return s
}

// FromListingItems converts a page of listing elements.
func FromListingItems(items []ListingItem) []ProjectSession {
	out := make([]ProjectSession, 0, len(items))
	for _, item := range items {
		out = append(out, FromListing(item))
	}
	return out
}
