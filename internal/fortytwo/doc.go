// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package fortytwo lists project sessions from the 42 Intra API and enriches
each one with its dependent sub-resources.

Endpoints:

	GET /v2/project_sessions?filter[campus_id]=X&filter[is_subscriptable]=true&page=N&per_page=100
	GET /v2/project_sessions/{id}/project_sessions_skills
	GET /v2/project_sessions/{id}/attachments
	GET /v2/project_sessions/{id}/project_sessions_rules   then GET /v2/rules/{rule_id}
	GET /v2/project_sessions/{id}/evaluations              then GET /v2/scales/{scale_id}
	GET /v2/project_sessions/{id}/teams?filter[with_mark]=true&page=N&per_page=100

Pagination stops at the first empty page or the first page shorter than the
page size.

Enrichment is best effort. Each category produces an Enrichment result; a
failed category falls back to its empty default and is listed in the Report.
Authentication, authorization and validation failures are not degraded: they
are returned from Enrich because retrying the next record would fail the
same way.

Rule and scale details are shared by many sessions and are memoized in an
in-memory LRU for the lifetime of the Fetcher.
*/
package fortytwo
