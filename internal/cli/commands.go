// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/intrasync/internal/sync"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Send pending records, then fetch, diff and sync (default)",
		Long: `Run performs a full sync:

  1. records left pending by an earlier run are sent to Anytype
  2. every project session is listed and enriched from the 42 API
  3. records are compared with the cache
  4. new records are created and changed records updated in Anytype

Requires FT_UID, FT_SECRET, ANYTYPE_API_KEY and ANYTYPE_SPACE_ID.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts, sync.ModeRun)
		},
	}
}

func newFetchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and cache project sessions without sending them",
		Long: `Fetch lists and enriches project sessions and caches new ones as pending.
Nothing is sent to Anytype; run "intrasync sync-cache" or "intrasync run" later.

Requires FT_UID and FT_SECRET.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts, sync.ModeFetch)
		},
	}
}

func newSyncCacheCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-cache",
		Short: "Send pending cached records to Anytype",
		Long: `Sync-cache sends every pending record in the cache to Anytype without
calling the 42 API.

Requires ANYTYPE_API_KEY and ANYTYPE_SPACE_ID.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts, sync.ModeSyncCache)
		},
	}
}

func newShowCacheCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show-cache",
		Short:         "Print the cached records and their sync status",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showCache(cmd, opts)
		},
	}
}

func newPlanCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the 42 API requests a fetch would make",
		Long: `Plan lists the 42 API requests a fetch would issue for the sessions in the
cache, without making any network call. Listing pages beyond the first and
scale lookups are shown as templates.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return plan(cmd, opts)
		},
	}
}
