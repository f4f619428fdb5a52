// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"go.chromium.org/tast-helpers/internal/meminfo"
)

// memInfoCmd implements subcommands.Command to print the memory snapshot the
// bulk-allocating helpers log before they start.
type memInfoCmd struct{}

func (*memInfoCmd) Name() string     { return "meminfo" }
func (*memInfoCmd) Synopsis() string { return "print a system memory snapshot" }
func (*memInfoCmd) Usage() string {
	return `Usage: meminfo

Description:
    Print total/available memory and swap in MiB.
`
}

func (*memInfoCmd) SetFlags(f *flag.FlagSet) {}

func (*memInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := meminfo.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(snap)
	return subcommands.ExitSuccess
}
