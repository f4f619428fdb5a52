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

	"go.chromium.org/tast-helpers/internal/oomscore"
)

// oomScoreCmd implements subcommands.Command to round-trip an oom_score_adj
// value on the current process, the same check the memory helpers perform
// at startup.
type oomScoreCmd struct {
	score string
}

func (*oomScoreCmd) Name() string     { return "oomscore" }
func (*oomScoreCmd) Synopsis() string { return "set and verify this process's oom_score_adj" }
func (*oomScoreCmd) Usage() string {
	return `Usage: oomscore [flag]...

Description:
    Write a value to /proc/self/oom_score_adj and verify the kernel kept it.
    Useful for checking whether a sandbox clamps the score before debugging
    a helper failure.

Flag:
`
}

func (oc *oomScoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&oc.score, "score", "0", "oom_score_adj value to write")
}

func (oc *oomScoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	before, err := oomscore.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("oom_score_adj was %d\n", before)
	if err := oomscore.Set(oc.score); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("oom_score_adj is now %s\n", oc.score)
	return subcommands.ExitSuccess
}
