// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"go.chromium.org/tast-helpers/internal/allocation"
	"go.chromium.org/tast-helpers/internal/shell"
)

// runCmd implements subcommands.Command to drive the allocation command loop
// against a fresh stack, either interactively or from a scenario file.
type runCmd struct {
	scenario string    // path to a YAML scenario, or empty for stdin
	stdout   io.Writer // where command confirmations go
}

// scenario is the on-disk format of a replay file: the command lines fed to
// the loop, in order.
type scenario struct {
	Commands []string `yaml:"commands"`
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd(stdout io.Writer) *runCmd {
	return &runCmd{stdout: stdout}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the allocation command loop" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]...

Description:
    Run the anon/free/exit command loop against a fresh allocation stack,
    reading commands from stdin or replaying a YAML scenario file:

        commands:
          - anon 1048576 0.5
          - free 1048576
          - exit

Flag:
`
}

func (rc *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&rc.scenario, "scenario", "", "YAML scenario file to replay instead of reading stdin")
}

func (rc *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := io.Reader(os.Stdin)
	if rc.scenario != "" {
		s, err := loadScenario(rc.scenario)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return subcommands.ExitFailure
		}
		in = strings.NewReader(strings.Join(s.Commands, "\n"))
	}
	if err := shell.New(allocation.New(), in, rc.stdout).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadScenario reads and validates a scenario file.
func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario")
	}
	var s scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse scenario %s", path)
	}
	if len(s.Commands) == 0 {
		return nil, errors.Errorf("scenario %s has no commands", path)
	}
	return &s, nil
}
