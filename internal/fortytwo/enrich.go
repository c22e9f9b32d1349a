// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package fortytwo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/tomtom215/intrasync/internal/apierr"
	"github.com/tomtom215/intrasync/internal/logging"
	"github.com/tomtom215/intrasync/internal/metrics"
	"github.com/tomtom215/intrasync/internal/models"
)

// Enrichment categories, also used as metrics labels.
const (
	CategorySkills      = "skills"
	CategoryAttachments = "attachments"
	CategoryRules       = "rules"
	CategoryRuleDetail  = "rule_detail"
	CategoryEvaluation  = "evaluation"
	CategoryTeams       = "teams"
)

// Enrichment is the outcome of one enrichment category. When Degraded is
// true, Value holds the category default and Err the cause.
type Enrichment[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// Report lists the categories that fell back to defaults for one session.
type Report struct {
	SessionID int
	Degraded  map[string]error
}

func newReport(id int) Report {
	return Report{SessionID: id, Degraded: map[string]error{}}
}

// OK reports whether every category succeeded.
func (r Report) OK() bool {
	return len(r.Degraded) == 0
}

// Categories returns the degraded category names, sorted.
func (r Report) Categories() []string {
	out := make([]string, 0, len(r.Degraded))
	for k := range r.Degraded {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r Report) add(category string, err error) {
	if _, exists := r.Degraded[category]; !exists {
		r.Degraded[category] = err
	}
	metrics.RecordEnrichmentDegraded(category, apierr.KindOf(err).String())
}

// settle turns a category result into an Enrichment. Errors that would
// fail every following request are returned instead of degraded.
func settle[T any](value T, err error, def T) (Enrichment[T], error) {
	if err == nil {
		return Enrichment[T]{Value: value}, nil
	}
	if propagates(err) {
		return Enrichment[T]{}, err
	}
	return Enrichment[T]{Value: def, Degraded: true, Err: err}, nil
}

func propagates(err error) bool {
	return apierr.IsClientError(err) ||
		apierr.IsFatalForRun(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Enrich returns a copy of s with its sub-resources filled in.
//
// Degraded categories keep their empty defaults and are listed in the
// Report. A non-nil error means a client, auth or cancellation failure; the
// returned session is then the unmodified input.
func (f *Fetcher) Enrich(ctx context.Context, s models.ProjectSession) (models.ProjectSession, Report, error) {
	out := s.Clone()
	out.Normalize()
	report := newReport(s.ID)
	log := logging.Ctx(ctx)

	skillList, err := f.fetchSkills(ctx, s.ID)
	skills, err := settle(skillList, err, []models.Skill{})
	if err != nil {
		return s, report, fmt.Errorf("enrich session %d skills: %w", s.ID, err)
	}
	if skills.Degraded {
		report.add(CategorySkills, skills.Err)
	}
	out.Skills = skills.Value

	attachmentList, err := f.fetchAttachments(ctx, s.ID)
	attachments, err := settle(attachmentList, err, []models.Attachment{})
	if err != nil {
		return s, report, fmt.Errorf("enrich session %d attachments: %w", s.ID, err)
	}
	if attachments.Degraded {
		report.add(CategoryAttachments, attachments.Err)
	}
	out.Attachments = attachments.Value

	ruleList, err := f.fetchRules(ctx, s.ID, report)
	rules, err := settle(ruleList, err, []models.Rule{})
	if err != nil {
		return s, report, fmt.Errorf("enrich session %d rules: %w", s.ID, err)
	}
	if rules.Degraded {
		report.add(CategoryRules, rules.Err)
	}
	out.Rules = rules.Value
	out.ForbiddenRules, out.RecommendedRules = CategorizeRules(out.Rules)

	correctionNumber, err := f.fetchCorrectionNumber(ctx, s.ID, report)
	correction, err := settle(correctionNumber, err, (*int)(nil))
	if err != nil {
		return s, report, fmt.Errorf("enrich session %d evaluation: %w", s.ID, err)
	}
	if correction.Degraded {
		report.add(CategoryEvaluation, correction.Err)
	}
	out.CorrectionNumber = correction.Value

	teamList, err := f.fetchTeams(ctx, s.ID)
	teams, err := settle(teamList, err, []Team{})
	if err != nil {
		return s, report, fmt.Errorf("enrich session %d teams: %w", s.ID, err)
	}
	if teams.Degraded {
		report.add(CategoryTeams, teams.Err)
	}
	total, success, rate := TeamStats(teams.Value, f.cfg.PassingMark)
	out.TeamTotalCount = models.Ptr(total)
	out.TeamSuccessCount = models.Ptr(success)
	out.TeamSuccessRate = models.Ptr(rate)

	if !report.OK() {
		log.Debug().
			Int("session_id", s.ID).
			Strs("degraded", report.Categories()).
			Msg("Session enriched with defaults")
	}
	return out, report, nil
}

type skillItem struct {
	ID      int    `json:"id"`
	SkillID int    `json:"skill_id"`
	Name    string `json:"name"`
	Skill   *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"skill"`
}

func (f *Fetcher) fetchSkills(ctx context.Context, id int) ([]models.Skill, error) {
	var items []skillItem
	path := fmt.Sprintf("/v2/project_sessions/%d/project_sessions_skills", id)
	if err := f.get(ctx, path, nil, "session skills", &items); err != nil {
		return nil, err
	}
	skills := make([]models.Skill, 0, len(items))
	for _, it := range items {
		sk := models.Skill{ID: it.ID, Name: it.Name}
		if it.SkillID != 0 {
			sk.ID = it.SkillID
		}
		if it.Skill != nil {
			if it.Skill.ID != 0 {
				sk.ID = it.Skill.ID
			}
			if sk.Name == "" {
				sk.Name = it.Skill.Name
			}
		}
		skills = append(skills, sk)
	}
	return skills, nil
}

func (f *Fetcher) fetchAttachments(ctx context.Context, id int) ([]models.Attachment, error) {
	var items []models.Attachment
	path := fmt.Sprintf("/v2/project_sessions/%d/attachments", id)
	if err := f.get(ctx, path, nil, "session attachments", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Attachment{}
	}
	return items, nil
}

type ruleRef struct {
	RuleID   int   `json:"rule_id"`
	Required *bool `json:"required"`
}

// fetchRules reads the rule references and resolves each through
// /v2/rules/{id}. A failed detail lookup keeps the partial rule.
func (f *Fetcher) fetchRules(ctx context.Context, id int, report Report) ([]models.Rule, error) {
	var refs []ruleRef
	path := fmt.Sprintf("/v2/project_sessions/%d/project_sessions_rules", id)
	if err := f.get(ctx, path, nil, "session rules", &refs); err != nil {
		return nil, err
	}

	rules := make([]models.Rule, 0, len(refs))
	for _, ref := range refs {
		if ref.RuleID == 0 {
			continue
		}
		rule := models.Rule{RuleID: ref.RuleID, Required: ref.Required}

		detail, err := f.ruleDetail(ctx, ref.RuleID)
		if err != nil {
			if propagates(err) {
				return nil, err
			}
			logging.Ctx(ctx).Debug().Err(err).Int("rule_id", ref.RuleID).Msg("Rule detail unavailable, keeping reference only")
			report.add(CategoryRuleDetail, err)
		} else {
			rule.Kind = detail.Kind
			rule.Name = detail.Name
			rule.Description = detail.Description
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (f *Fetcher) ruleDetail(ctx context.Context, ruleID int) (ruleDetail, error) {
	if d, ok := f.rules.Get(ruleID); ok {
		return d, nil
	}
	var d ruleDetail
	if err := f.get(ctx, "/v2/rules/"+strconv.Itoa(ruleID), nil, "rule "+strconv.Itoa(ruleID), &d); err != nil {
		return ruleDetail{}, err
	}
	f.rules.Add(ruleID, d)
	return d, nil
}

type evaluationItem struct {
	Kind    string `json:"kind"`
	ScaleID *int   `json:"scale_id"`
}

// fetchCorrectionNumber returns correction_number of the first scale
// evaluation whose scale can be read.
func (f *Fetcher) fetchCorrectionNumber(ctx context.Context, id int, report Report) (*int, error) {
	var items []evaluationItem
	path := fmt.Sprintf("/v2/project_sessions/%d/evaluations", id)
	if err := f.get(ctx, path, nil, "session evaluations", &items); err != nil {
		return nil, err
	}

	var lastErr error
	for _, it := range items {
		if it.Kind != "scale" || it.ScaleID == nil || *it.ScaleID == 0 {
			continue
		}
		scale, err := f.scaleDetail(ctx, *it.ScaleID)
		if err != nil {
			if propagates(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		return scale.CorrectionNumber, nil
	}
	return nil, lastErr
}

func (f *Fetcher) scaleDetail(ctx context.Context, scaleID int) (scaleDetail, error) {
	if d, ok := f.scales.Get(scaleID); ok {
		return d, nil
	}
	var d scaleDetail
	if err := f.get(ctx, "/v2/scales/"+strconv.Itoa(scaleID), nil, "scale "+strconv.Itoa(scaleID), &d); err != nil {
		return scaleDetail{}, err
	}
	f.scales.Add(scaleID, d)
	return d, nil
}

func (f *Fetcher) fetchTeams(ctx context.Context, id int) ([]Team, error) {
	path := fmt.Sprintf("/v2/project_sessions/%d/teams", id)
	var teams []Team
	err := paginate(ctx, f.cfg.PageSize, func(page int) (int, error) {
		q := url.Values{}
		q.Set("filter[with_mark]", "true")
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(f.cfg.PageSize))

		var batch []Team
		if err := f.get(ctx, path, q, "session teams", &batch); err != nil {
			return 0, err
		}
		teams = append(teams, batch...)
		return len(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}
