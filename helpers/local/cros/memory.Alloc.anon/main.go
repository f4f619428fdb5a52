// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command memory.Alloc.anon allocates anonymous memory on request from a
// test bundle. It reads one signed byte count per line from stdin, positive
// to allocate and negative to free, and replies with the running total of
// allocated bytes. An empty line frees everything and exits.
//
// Usage: memory.Alloc.anon <ratio>
//
// ratio is the fraction of each page filled with random bytes, controlling
// how well the allocated memory compresses.
package main

import (
	"os"
	"strconv"

	"go.chromium.org/tast-helpers/internal/allocation"
	"go.chromium.org/tast-helpers/internal/command"
	"go.chromium.org/tast-helpers/internal/shell"
)

func doMain() int {
	if len(os.Args) != 2 {
		return command.WriteError(os.Stderr, command.UsageErrorf(os.Args, "<ratio>"))
	}
	ratio, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return command.WriteError(os.Stderr, command.NewStatusErrorf(1, "bad ratio %q", os.Args[1]))
	}
	if err := shell.NewAllocLoop(allocation.New(), ratio, os.Stdin, os.Stdout).Run(); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	return 0
}

func main() {
	os.Exit(doMain())
}
