// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Package cli implements the intrasync command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/intrasync/internal/sync"
)

// RootOptions holds the persistent flags.
type RootOptions struct {
	ConfigFile   string
	EnvFile      string
	LogLevel     string
	LogFormat    string
	CachePath    string
	CacheBackend string
	PushMetrics  bool

	// deps replaces the production wiring in tests.
	deps *Deps
}

// NewRootCommand creates the intrasync command. Without a subcommand it
// performs a full run.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intrasync",
		Short: "Sync the 42 Intra project catalog into Anytype",
		Long: `intrasync lists the project sessions of a 42 campus, enriches each one
with its skills, attachments, rules, evaluations and team statistics, caches
them locally and creates or updates one Anytype page per session.

Running without a subcommand is the same as "intrasync run".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts, sync.ModeRun)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log format (json|console)")
	flags.StringVar(&opts.CachePath, "cache-path", "", "cache database path")
	flags.StringVar(&opts.CacheBackend, "cache-backend", "", "cache backend (sqlite|duckdb|badger)")
	flags.BoolVar(&opts.PushMetrics, "push-metrics", false, "push run metrics to metrics.pushgateway_url")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newFetchCommand(opts))
	cmd.AddCommand(newSyncCacheCommand(opts))
	cmd.AddCommand(newShowCacheCommand(opts))
	cmd.AddCommand(newPlanCommand(opts))

	return cmd
}

// overrides returns the koanf paths set by flags given on the command line.
func (o *RootOptions) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			out[key] = value
		}
	}
	set("log-level", "logging.level", o.LogLevel)
	set("log-format", "logging.format", o.LogFormat)
	set("cache-path", "cache.path", o.CachePath)
	set("cache-backend", "cache.backend", o.CacheBackend)
	return out
}
