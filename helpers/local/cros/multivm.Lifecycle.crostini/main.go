// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command multivm.Lifecycle.crostini is one lifecycle unit in a memory
// pressure test: it allocates a fixed amount of anonymous memory up front
// and then stays alive holding it until killed or told to exit, so the
// bundle can count how many such units survive.
//
// Usage: multivm.Lifecycle.crostini <oom_score_adj> <size> <ratio>
//
// The process exempts itself from the OOM killer while populating memory,
// then applies the requested oom_score_adj, so units die in the order the
// bundle assigned rather than mid-allocation.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.chromium.org/tast-helpers/internal/allocation"
	"go.chromium.org/tast-helpers/internal/command"
	"go.chromium.org/tast-helpers/internal/meminfo"
	"go.chromium.org/tast-helpers/internal/oomscore"
)

func doMain() int {
	log.SetFlags(0)
	log.SetPrefix("multivm.Lifecycle.crostini: ")
	if len(os.Args) != 4 {
		return command.WriteError(os.Stderr, command.UsageErrorf(os.Args, "<oom_score_adj> <size> <ratio>"))
	}
	score := os.Args[1]
	size, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		return command.WriteError(os.Stderr, command.NewStatusErrorf(1, "bad size %q: %v", os.Args[2], err))
	}
	ratio, err := strconv.ParseFloat(os.Args[3], 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return command.WriteError(os.Stderr, command.NewStatusErrorf(1, "bad ratio %q", os.Args[3]))
	}

	if snap, err := meminfo.Read(); err != nil {
		log.Print("Failed to read memory info: ", err)
	} else {
		log.Print("Before allocation: ", snap)
	}

	// Stay exempt from the OOM killer until the memory is populated.
	if err := oomscore.Set(strconv.Itoa(oomscore.Min)); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	stack := allocation.New()
	if err := stack.Grow(size, ratio); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	if err := oomscore.Set(score); err != nil {
		return command.WriteError(os.Stderr, err)
	}

	fmt.Printf("allocated %d bytes of anonymous memory, total %d bytes over %d allocations\n",
		size, stack.TotalBytes(), stack.Count())

	// Hold the memory until the bundle closes stdin or sends "exit".
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if sc.Text() == "exit" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return command.WriteError(os.Stderr, err)
	}
	fmt.Println("exiting")
	return 0
}

func main() {
	os.Exit(doMain())
}
