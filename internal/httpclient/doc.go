// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package httpclient executes JSON HTTP requests with pacing, quota handling
and bounded retries.

Every attempt goes through the same steps:

 1. wait for the pacing interval of the shared ratelimit.Limiter
 2. send the request
 3. let the limiter inspect X-RateLimit-Remaining / X-RateLimit-Reset
 4. classify the response

Classification:

  - 2xx: returned to the caller
  - 400, 401, 403, 404: returned immediately, never retried (see CheckStatus)
  - 429: wait for Retry-After (or the backoff) and retry; apierr.KindRateLimitExhausted when out of attempts
  - other non-2xx: backoff and retry; apierr.KindAPI when out of attempts
  - transport failure: backoff and retry; apierr.KindRetryExhausted wrapping the last cause

Backoff is min(base * 2^attempt, max). Creates against non-idempotent
endpoints should use a client with MaxRetries set to zero.
*/
package httpclient
