// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

// Command intrasync syncs the 42 Intra project catalog into Anytype.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/intrasync/internal/cli"
	"github.com/tomtom215/intrasync/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		logging.Err(err).Msg("intrasync failed")
	}
	_ = logging.Close()
	os.Exit(cli.ExitCode(err))
}
