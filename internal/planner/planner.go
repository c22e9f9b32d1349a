// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package planner lists the 42 API requests a fetch would issue, derived
// from the cached sessions. It performs no network calls.
package planner

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/intrasync/internal/fortytwo"
	"github.com/tomtom215/intrasync/internal/models"
)

const (
	pageSize = 100

	campusPlaceholder = "[CAMPUS_ID]"
	scalePlaceholder  = "[SCALE_ID]"
	// pagePlaceholder marks a request that repeats for page 2 onwards.
	pagePlaceholder = "..."
)

// planSet collects entries. Concrete endpoints are kept once, under the
// description they were first added with; endpoints with a placeholder are
// kept once per description.
type planSet struct {
	seen    map[string]bool
	entries map[string]struct{}
}

func newPlanSet() *planSet {
	return &planSet{seen: make(map[string]bool), entries: make(map[string]struct{})}
}

func (p *planSet) add(endpoint, description string) {
	if p.seen[endpoint] && !strings.Contains(endpoint, "[") {
		return
	}
	p.seen[endpoint] = true
	entry := fmt.Sprintf("[GET] %s%s  (%s)", fortytwo.DefaultBaseURL, endpoint, description)
	p.entries[entry] = struct{}{}
}

func (p *planSet) sorted() []string {
	out := make([]string, 0, len(p.entries))
	for e := range p.entries {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Plan returns the sorted request plan for sessions. A campusID of zero or
// less renders the listing with a [CAMPUS_ID] placeholder.
func Plan(sessions []models.ProjectSession, campusID int) []string {
	p := newPlanSet()

	campus := campusPlaceholder
	if campusID > 0 {
		campus = strconv.Itoa(campusID)
	}
	p.add(listingPath(campus, "1"), "project sessions, page 1")
	p.add(listingPath(campus, pagePlaceholder), "project sessions, page 2 and later")

	for _, s := range sessions {
		base := "/v2/project_sessions/" + strconv.Itoa(s.ID)
		name := s.ProjectName

		p.add(base+"/project_sessions_skills", "skills (Session: "+name+")")
		p.add(base+"/attachments", "attachments (Session: "+name+")")
		p.add(base+"/project_sessions_rules", "rules (Session: "+name+")")
		for _, id := range s.RuleIDs() {
			p.add("/v2/rules/"+strconv.Itoa(id), fmt.Sprintf("rule %d (from Session: %s)", id, name))
		}
		p.add(base+"/evaluations", "evaluations (Session: "+name+")")
		// The scale id is not cached, so only the template can be listed.
		p.add("/v2/scales/"+scalePlaceholder, "scale (from Session: "+name+")")
		p.add(teamsPath(base, "1"), "teams, page 1 (Session: "+name+")")
		p.add(teamsPath(base, pagePlaceholder), "teams, page 2 and later (Session: "+name+")")
	}

	return p.sorted()
}

func listingPath(campus, page string) string {
	return fmt.Sprintf("/v2/project_sessions?filter[campus_id]=%s&filter[is_subscriptable]=true&page=%s&per_page=%d",
		campus, page, pageSize)
}

func teamsPath(base, page string) string {
	return fmt.Sprintf("%s/teams?filter[with_mark]=true&page=%s&per_page=%d", base, page, pageSize)
}

// Print writes one plan entry per line.
func Print(w io.Writer, plan []string) error {
	for _, entry := range plan {
		if _, err := fmt.Fprintln(w, entry); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}
	return nil
}
