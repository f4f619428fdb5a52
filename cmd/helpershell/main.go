// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the helpershell executable, a developer tool for
// exercising the test helper logic off-device. The helpers themselves only
// ship to DUTs, so protocol changes are smoke-tested here.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func doMain() int {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(newRunCmd(os.Stdout), "")
	subcommands.Register(&oomScoreCmd{}, "")
	subcommands.Register(&memInfoCmd{}, "")

	flag.Parse()
	return int(subcommands.Execute(context.Background()))
}

func main() {
	os.Exit(doMain())
}
