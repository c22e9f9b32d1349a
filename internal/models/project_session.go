// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// ProjectSession is a 42 project session with its enrichment.
//
// ID is the upstream primary key. Everything else is compared by Equal.
// Enrichment fields (Skills through TeamSuccessRate) are filled by the
// fetcher; FromListing leaves them at their empty defaults.
type ProjectSession struct {
	ID               int          `json:"id"`
	ProjectID        *int         `json:"project_id"`
	ProjectName      string       `json:"project_name"`
	ProjectSlug      string       `json:"project_slug"`
	Description      *string      `json:"description"`
	XP               *int         `json:"xp"` // project difficulty
	CreationDate     *string      `json:"creation_date"`
	CursusID         *int         `json:"cursus_id"`
	CursusName       *string      `json:"cursus_name"`
	CursusSlug       *string      `json:"cursus_slug"`
	MaxPeople        *int         `json:"max_people"`
	Solo             *bool        `json:"solo"`
	CorrectionNumber *int         `json:"correction_number"`
	Keywords         []string     `json:"keywords"` // project tag names
	Skills           []Skill      `json:"skills"`
	Attachments      []Attachment `json:"attachments"`
	IsSubscriptable  *bool        `json:"is_subscriptable"`
	BeginAt          *string      `json:"begin_at"`
	EndAt            *string      `json:"end_at"`
	Rules            []Rule       `json:"rules"`
	Status           *string      `json:"status"`
	ForbiddenRules   []string     `json:"forbidden_rules"`
	RecommendedRules []string     `json:"recommended_rules"`
	TeamTotalCount   *int         `json:"team_total_count"`
	TeamSuccessCount *int         `json:"team_success_count"`
	TeamSuccessRate  *float64     `json:"team_success_rate"` // 0.0 - 1.0
}

// Skill is one entry of /v2/project_sessions/{id}/project_sessions_skills.
type Skill struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Attachment is one entry of /v2/project_sessions/{id}/attachments.
type Attachment struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	Link    string `json:"link,omitempty"`
	FileURL string `json:"file_url,omitempty"`
}

// Location returns the first non-empty of URL, Link and FileURL.
func (a Attachment) Location() string {
	switch {
	case a.URL != "":
		return a.URL
	case a.Link != "":
		return a.Link
	default:
		return a.FileURL
	}
}

// Rule is a session rule reference, enriched from /v2/rules/{id} when the
// detail fetch succeeds. A partial rule carries only RuleID and Required.
type Rule struct {
	RuleID      int     `json:"rule_id"`
	Required    *bool   `json:"required"`
	Kind        *string `json:"kind,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Partial reports whether the rule detail is missing.
func (r Rule) Partial() bool {
	return r.Kind == nil && r.Name == nil && r.Description == nil
}

// Text returns the rule name, falling back to its description.
func (r Rule) Text() string {
	if name := Deref(r.Name); name != "" {
		return name
	}
	return Deref(r.Description)
}

// IsRequired reports whether Required is set and true.
func (r Rule) IsRequired() bool {
	return r.Required != nil && *r.Required
}

// Normalize replaces nil collections with empty ones.
func (s *ProjectSession) Normalize() {
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	if s.Skills == nil {
		s.Skills = []Skill{}
	}
	if s.Attachments == nil {
		s.Attachments = []Attachment{}
	}
	if s.Rules == nil {
		s.Rules = []Rule{}
	}
	if s.ForbiddenRules == nil {
		s.ForbiddenRules = []string{}
	}
	if s.RecommendedRules == nil {
		s.RecommendedRules = []string{}
	}
}

// Clone returns a deep copy.
func (s ProjectSession) Clone() ProjectSession {
	c := s
	c.ProjectID = clonePtr(s.ProjectID)
	c.Description = clonePtr(s.Description)
	c.XP = clonePtr(s.XP)
	c.CreationDate = clonePtr(s.CreationDate)
	c.CursusID = clonePtr(s.CursusID)
	c.CursusName = clonePtr(s.CursusName)
	c.CursusSlug = clonePtr(s.CursusSlug)
	c.MaxPeople = clonePtr(s.MaxPeople)
	c.Solo = clonePtr(s.Solo)
	c.CorrectionNumber = clonePtr(s.CorrectionNumber)
	c.IsSubscriptable = clonePtr(s.IsSubscriptable)
	c.BeginAt = clonePtr(s.BeginAt)
	c.EndAt = clonePtr(s.EndAt)
	c.Status = clonePtr(s.Status)
	c.TeamTotalCount = clonePtr(s.TeamTotalCount)
	c.TeamSuccessCount = clonePtr(s.TeamSuccessCount)
	c.TeamSuccessRate = clonePtr(s.TeamSuccessRate)

	c.Keywords = cloneSlice(s.Keywords)
	c.Skills = cloneSlice(s.Skills)
	c.Attachments = cloneSlice(s.Attachments)
	c.ForbiddenRules = cloneSlice(s.ForbiddenRules)
	c.RecommendedRules = cloneSlice(s.RecommendedRules)
	if s.Rules != nil {
		c.Rules = make([]Rule, len(s.Rules))
		for i, r := range s.Rules {
			c.Rules[i] = Rule{
				RuleID:      r.RuleID,
				Required:    clonePtr(r.Required),
				Kind:        clonePtr(r.Kind),
				Name:        clonePtr(r.Name),
				Description: clonePtr(r.Description),
			}
		}
	}
	return c
}

// Equal compares two sessions field for field, ignoring ID. Both sides are
// normalized and serialized to canonical JSON; an error means one of them
// could not be serialized and callers should treat the pair as different.
func Equal(a, b ProjectSession) (bool, error) {
	ja, err := canonical(a)
	if err != nil {
		return false, fmt.Errorf("serialize session %d: %w", a.ID, err)
	}
	jb, err := canonical(b)
	if err != nil {
		return false, fmt.Errorf("serialize session %d: %w", b.ID, err)
	}
	return bytes.Equal(ja, jb), nil
}

func canonical(s ProjectSession) ([]byte, error) {
	c := s.Clone()
	c.ID = 0
	c.Normalize()
	return json.Marshal(c)
}

// SkillNames returns the non-empty skill names in order.
func (s ProjectSession) SkillNames() []string {
	names := make([]string, 0, len(s.Skills))
	for _, sk := range s.Skills {
		if sk.Name != "" {
			names = append(names, sk.Name)
		}
	}
	return names
}

// AttachmentURLs returns the location of every attachment that has one.
func (s ProjectSession) AttachmentURLs() []string {
	urls := make([]string, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		if u := a.Location(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// FormattedRules returns one display line per rule with text, prefixed with
// "[必須] " for required rules.
func (s ProjectSession) FormattedRules() []string {
	out := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		text := r.Text()
		if text == "" {
			continue
		}
		if r.IsRequired() {
			text = "[必須] " + text
		}
		out = append(out, text)
	}
	return out
}

// RuleIDs returns the rule ids referenced by the session.
func (s ProjectSession) RuleIDs() []int {
	ids := make([]int, 0, len(s.Rules))
	for _, r := range s.Rules {
		if r.RuleID != 0 {
			ids = append(ids, r.RuleID)
		}
	}
	return ids
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
