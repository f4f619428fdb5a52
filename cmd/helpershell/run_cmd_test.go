// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"

	"go.chromium.org/tast-helpers/internal/testutil"
)

func TestLoadScenario(t *testing.T) {
	path := testutil.TempFile(t, "scenario.yaml", `commands:
  - anon 1048576 0.5
  - free 1048576
  - exit
`)
	s, err := loadScenario(path)
	if err != nil {
		t.Fatal("loadScenario failed: ", err)
	}
	want := &scenario{Commands: []string{"anon 1048576 0.5", "free 1048576", "exit"}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("loadScenario mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	for _, tc := range []struct {
		name, contents string
	}{
		{"empty", "commands: []\n"},
		{"unknown field", "steps:\n  - exit\n"},
		{"not yaml", "{{{\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.TempFile(t, "scenario.yaml", tc.contents)
			if _, err := loadScenario(path); err == nil {
				t.Error("loadScenario unexpectedly succeeded")
			}
		})
	}
}

func TestRunCmdReplaysScenario(t *testing.T) {
	path := testutil.TempFile(t, "scenario.yaml", `commands:
  - anon 1048576 0.0
  - free 1048576
  - exit
`)
	var out bytes.Buffer
	rc := newRunCmd(&out)
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rc.SetFlags(fs)
	if err := fs.Parse([]string{"-scenario", path}); err != nil {
		t.Fatal(err)
	}
	if status := rc.Execute(context.Background(), fs); status != subcommands.ExitSuccess {
		t.Fatalf("Execute returned %v; want success", status)
	}
	if !strings.Contains(out.String(), "exiting") {
		t.Errorf("Execute output %q does not contain %q", out.String(), "exiting")
	}
}
