// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package planner

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tomtom215/intrasync/internal/models"
)

func assertGolden(t *testing.T, name string, plan []string) {
	t.Helper()
	var buf bytes.Buffer
	if err := Print(&buf, plan); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}

func TestPlan_Sessions(t *testing.T) {
	t.Parallel()

	sessions := []models.ProjectSession{
		{ID: 3001, ProjectName: "libft", Rules: []models.Rule{{RuleID: 10}, {RuleID: 11}}},
		{ID: 3002, ProjectName: "get_next_line", Rules: []models.Rule{{RuleID: 10}}},
	}
	assertGolden(t, "sessions", Plan(sessions, 26))
}

func TestPlan_EmptyCache(t *testing.T) {
	t.Parallel()

	plan := Plan(nil, 0)
	if len(plan) != 2 {
		t.Fatalf("len(plan) = %d, want 2 listing templates", len(plan))
	}
	assertGolden(t, "empty", plan)
}

func TestPlan_SharedRuleListedOnce(t *testing.T) {
	t.Parallel()

	sessions := []models.ProjectSession{
		{ID: 1, ProjectName: "a", Rules: []models.Rule{{RuleID: 7}}},
		{ID: 2, ProjectName: "b", Rules: []models.Rule{{RuleID: 7}, {RuleID: 0}}},
	}
	var rules, scales int
	for _, entry := range Plan(sessions, 1) {
		switch {
		case strings.Contains(entry, "/v2/rules/"):
			rules++
		case strings.Contains(entry, "/v2/scales/"):
			scales++
		}
	}
	if rules != 1 {
		t.Errorf("rule entries = %d, want 1", rules)
	}
	// The scale template is kept per session.
	if scales != 2 {
		t.Errorf("scale entries = %d, want 2", scales)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestPrint_WriteError(t *testing.T) {
	t.Parallel()

	if err := Print(failingWriter{}, Plan(nil, 0)); err == nil {
		t.Fatal("Print() error = nil, want write error")
	}
}
