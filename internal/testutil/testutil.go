// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testutil provides support code for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempFile creates a file named name containing contents inside a temporary
// directory cleaned up with the test, and returns its path. If the file
// cannot be created, a fatal error is reported to t.
func TempFile(t *testing.T, name, contents string) string {
	t.Helper()
	// Subtests have slashes in their name.
	dir, err := os.MkdirTemp("", "helpers_unittest_"+strings.ReplaceAll(t.Name(), "/", "_")+".")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}
