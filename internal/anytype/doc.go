// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package anytype is the downstream client: it converts project sessions into
Anytype page objects and creates or updates them through the Anytype local
API.

Endpoints (relative to Config.BaseURL):

	POST  /v1/spaces/{space}/objects/batch   {"objects":[...]} -> {"results":[...]}
	POST  /v1/spaces/{space}/objects         {...}             -> {"object":{...}}
	PATCH /v1/spaces/{space}/objects/{id}    {...}             -> {"object":{...}}

Every request carries "Authorization: Bearer <api key>" and the
Anytype-Version header. A result reports its object id under "id" or
"object_id"; a result carrying an "error" key is a per-item failure even when
the HTTP status is 2xx.

Calls go through an httpclient.Client (pacing, retry and the error taxonomy)
wrapped by a sony/gobreaker circuit breaker, so a downstream outage stops the
run from hammering the API. Client-side failures (400, 401, 403, 404) do not
count against the breaker.
*/
package anytype
