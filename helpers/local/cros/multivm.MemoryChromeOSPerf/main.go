// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command multivm.MemoryChromeOSPerf holds anonymous memory on behalf of a
// test bundle. After pinning its oom_score_adj to the value passed on the
// command line, it reads allocation commands from stdin until told to exit:
//
//	anon <size> <ratio>
//	free <size>
//	exit
//
// See the shell package for the protocol details. The bundle measures how
// much can be allocated before the host reaches critical memory pressure.
package main

import (
	"os"

	"go.chromium.org/tast-helpers/internal/allocation"
	"go.chromium.org/tast-helpers/internal/command"
	"go.chromium.org/tast-helpers/internal/oomscore"
	"go.chromium.org/tast-helpers/internal/shell"
)

func doMain() int {
	if len(os.Args) != 2 {
		return command.WriteError(os.Stderr, command.UsageErrorf(os.Args, "<oom_score_adj>"))
	}
	if err := oomscore.Set(os.Args[1]); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	if err := shell.New(allocation.New(), os.Stdin, os.Stdout).Run(); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	return 0
}

func main() {
	os.Exit(doMain())
}
