// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package anytype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/intrasync/internal/models"
)

// Page object defaults.
const (
	TypeKeyPage = "page"
	PageEmoji   = "📄"
)

const notAvailable = "N/A"

// Convert builds the Anytype page object for s. The object name is the
// project name, which the sync engine relies on to check alignment.
func Convert(s models.ProjectSession) Object {
	return Object{
		Name:       s.ProjectName,
		Body:       Body(s),
		TypeKey:    TypeKeyPage,
		Icon:       Icon{Emoji: PageEmoji, Format: "emoji"},
		Properties: Properties(s),
	}
}

// ConvertAll converts sessions in order.
func ConvertAll(sessions []models.ProjectSession) []Object {
	out := make([]Object, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, Convert(s))
	}
	return out
}

// Body renders the markdown page body.
func Body(s models.ProjectSession) string {
	var parts []string
	add := func(format string, args ...any) {
		parts = append(parts, fmt.Sprintf(format, args...))
	}

	if d := models.Deref(s.Description); d != "" {
		add("## 説明\n\n%s\n", d)
	}

	add("## 基本情報\n\n")
	add("- **プロジェクトID**: %s\n", intText(s.ProjectID))
	add("- **プロジェクト名**: %s\n", s.ProjectName)
	add("- **スラッグ**: %s\n", s.ProjectSlug)
	add("- **XP**: %s\n", intText(s.XP))
	add("- **作成日**: %s\n", orNA(s.CreationDate))
	add("- **ステータス**: %s\n", orNA(s.Status))
	add("- **最大人数**: %s\n", intText(s.MaxPeople))
	add("- **ソロ**: %s\n", yesNo(s.Solo))
	add("- **修正回数**: %s\n", intText(s.CorrectionNumber))
	add("- **利用可能**: %s\n", yesNo(s.IsSubscriptable))
	if v := models.Deref(s.BeginAt); v != "" {
		add("- **開始日**: %s\n", v)
	}
	if v := models.Deref(s.EndAt); v != "" {
		add("- **終了日**: %s\n", v)
	}

	add("\n## コース情報\n\n")
	add("- **コースID**: %s\n", intText(s.CursusID))
	add("- **コース名**: %s\n", orNA(s.CursusName))
	add("- **コーススラッグ**: %s\n", orNA(s.CursusSlug))

	if len(s.Keywords) > 0 {
		add("\n## キーワード\n\n%s\n", strings.Join(s.Keywords, ", "))
	}
	if skills := s.SkillNames(); len(skills) > 0 {
		add("\n## スキル\n\n%s\n", strings.Join(skills, ", "))
	}
	if urls := s.AttachmentURLs(); len(urls) > 0 {
		add("\n## 添付ファイル (%d件)\n\n", len(urls))
		for _, u := range urls {
			add("- [%s](%s)\n", u, u)
		}
	}
	if rules := s.FormattedRules(); len(rules) > 0 {
		add("\n## ルール\n\n")
		for _, r := range rules {
			add("- %s\n", r)
		}
	}
	if len(s.ForbiddenRules) > 0 {
		add("\n## 禁止ルール\n\n")
		for _, r := range s.ForbiddenRules {
			add("- %s\n", r)
		}
	}
	if len(s.RecommendedRules) > 0 {
		add("\n## 推奨ルール\n\n")
		for _, r := range s.RecommendedRules {
			add("- %s\n", r)
		}
	}
	if s.TeamTotalCount != nil {
		add("\n## チーム統計\n\n")
		add("- **総チーム数**: %d\n", *s.TeamTotalCount)
		add("- **成功チーム数**: %d\n", models.Deref(s.TeamSuccessCount))
		add("- **成功率**: %s\n", SuccessRate(s.TeamSuccessRate))
	}

	return strings.Join(parts, "\n")
}

// SuccessRate formats a 0-1 ratio as a percentage with one decimal, or ""
// when unknown.
func SuccessRate(rate *float64) string {
	if rate == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *rate*100)
}

// Properties builds the typed property list. The numeric and checkbox keys
// are always present; text keys only when the value is non-empty.
func Properties(s models.ProjectSession) []Property {
	props := []Property{
		idProp("project_id", s.ProjectID),
		textProp("project_slug", s.ProjectSlug),
		numberProp("xp", s.XP),
		numberProp("cursus_id", s.CursusID),
		numberProp("max_people", s.MaxPeople),
		checkboxProp("solo", s.Solo),
		numberProp("correction_number", s.CorrectionNumber),
		checkboxProp("is_subscriptable", s.IsSubscriptable),
	}

	optional := []struct {
		key   string
		value string
	}{
		{"description", models.Deref(s.Description)},
		{"cursus_name", models.Deref(s.CursusName)},
		{"status", models.Deref(s.Status)},
		{"creation_date", models.Deref(s.CreationDate)},
		{"begin_at", models.Deref(s.BeginAt)},
		{"end_at", models.Deref(s.EndAt)},
		{"skills", strings.Join(s.SkillNames(), ", ")},
		{"keywords", strings.Join(s.Keywords, ", ")},
	}
	for _, o := range optional {
		if o.value != "" {
			props = append(props, textProp(o.key, o.value))
		}
	}
	return props
}

func textProp(key, v string) Property {
	return Property{Key: key, Text: &v}
}

func idProp(key string, v *int) Property {
	if v == nil {
		return Property{Key: key}
	}
	return textProp(key, strconv.Itoa(*v))
}

func numberProp(key string, v *int) Property {
	p := Property{Key: key}
	if v != nil {
		n := float64(*v)
		p.Number = &n
	}
	return p
}

func checkboxProp(key string, v *bool) Property {
	p := Property{Key: key}
	if v != nil {
		b := *v
		p.Checkbox = &b
	}
	return p
}

func intText(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v)
}

func orNA(v *string) string {
	if s := models.Deref(v); s != "" {
		return s
	}
	return notAvailable
}

func yesNo(v *bool) string {
	if v != nil && *v {
		return "はい"
	}
	return "いいえ"
}
