// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package fortytwo

// Team is the subset of a /v2/project_sessions/{id}/teams element used for
// outcome statistics.
type Team struct {
	ID        int   `json:"id"`
	Validated *bool `json:"validated?"`
	FinalMark *int  `json:"final_mark"`
}

// Succeeded reports whether the team is validated or reached passingMark.
func (t Team) Succeeded(passingMark int) bool {
	if t.Validated != nil && *t.Validated {
		return true
	}
	return t.FinalMark != nil && *t.FinalMark >= passingMark
}

// TeamStats counts successful teams. rate is success/total, or 0 for no teams.
func TeamStats(teams []Team, passingMark int) (total, success int, rate float64) {
	total = len(teams)
	for _, t := range teams {
		if t.Succeeded(passingMark) {
			success++
		}
	}
	if total > 0 {
		rate = float64(success) / float64(total)
	}
	return total, success, rate
}
