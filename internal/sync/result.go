// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package sync

import "fmt"

// Result aggregates record counts for one phase or a whole run.
//
// The counters are not a partition of Total. A record whose enrichment fails
// is counted under Errors and is still sent with its base fields, so it can
// also count under Success and Success+Errors+Skipped may exceed Total.
type Result struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

// Merge returns the field-wise sum of r and o.
func (r Result) Merge(o Result) Result {
	return Result{
		Total:   r.Total + o.Total,
		Success: r.Success + o.Success,
		Errors:  r.Errors + o.Errors,
		Skipped: r.Skipped + o.Skipped,
	}
}

// HasErrors reports whether any record failed.
func (r Result) HasErrors() bool {
	return r.Errors > 0
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("total: %d, success: %d, errors: %d, skipped: %d", r.Total, r.Success, r.Errors, r.Skipped)
}
