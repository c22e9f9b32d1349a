// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

/*
Package config loads intrasync settings with Koanf v2.

# Configuration Sources

Sources are layered, later ones winning:
  - built-in defaults (defaultConfig)
  - a YAML file: --config, CONFIG_PATH, then ./config.yaml, ./config.yml
    and $XDG_CONFIG_HOME/intrasync/config.yaml
  - a .env file merged into the environment (existing variables win)
  - non-empty environment variables, through an explicit name map
  - command-line overrides

# Environment Variables

42 Intra:
  - FT_UID, FT_SECRET: OAuth2 client credentials
  - FORTYTWO_API_URL: API base URL (default: https://api.intra.42.fr)
  - FORTYTWO_TOKEN_URL: token endpoint (default: https://api.intra.42.fr/oauth/token)
  - FORTYTWO_CAMPUS_ID: campus filter (default: 26)
  - FORTYTWO_CURSUS_ID: cursus filter (default: none)
  - TOKEN_FILE: token persistence (default: $XDG_DATA_HOME/intrasync/token.json)

Anytype:
  - ANYTYPE_API_URL (default: http://localhost:3030)
  - ANYTYPE_API_KEY, ANYTYPE_SPACE_ID
  - ANYTYPE_OBJECTS_ID: collection new objects are added to
  - ANYTYPE_VERSION: Anytype-Version header (default: 2025-05-20)

HTTP and pacing:
  - MAX_RETRIES (default: 3)
  - BASE_DELAY, MAX_DELAY: Go durations (default: 500ms, 60s)
  - HTTP_TIMEOUT (default: 30s)
  - REQUESTS_PER_SECOND (default: 2)
  - RATE_LIMIT_THRESHOLD (default: 10)

Cache and sync:
  - CACHE_DB_PATH (default: $XDG_DATA_HOME/intrasync/cache.db)
  - CACHE_BACKEND: sqlite, duckdb or badger (default: sqlite)
  - BATCH_SIZE (default: 50)
  - DETAIL_FETCH_INTERVAL: progress log interval (default: 10)

Logging and metrics:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER, LOG_FILE
  - PUSHGATEWAY_URL, PUSHGATEWAY_JOB

# Validation

Load validates formats and ranges only. Credentials depend on the command:
fetch needs RequireFortyTwo, sync-cache needs RequireAnytype, run needs
both, and show-cache and plan need neither.
*/
package config
