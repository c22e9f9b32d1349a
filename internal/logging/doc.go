// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package logging provides centralized zerolog-based structured logging for intrasync.
//
// Every package logs through the global logger configured here, so a single
// Init call at startup controls level, format and destination for the whole run.
//
// # Overview
//
// The package provides:
//   - JSON output for unattended runs (cron, CI) and console output for terminals
//   - An optional log file that receives a copy of every line
//   - Run-scoped loggers carrying the run ID and the current phase
//   - Redaction helpers for credentials that may appear in error bodies
//
// # Usage
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Info().Int("pending", n).Msg("Restoring pending records")
//
// Always terminate log chains with .Msg() or .Send().
package logging
