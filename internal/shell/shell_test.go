// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shell_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/tast-helpers/internal/allocation"
	"go.chromium.org/tast-helpers/internal/shell"
)

const pageSize = 4096

// zeroReader is an endless random source for deterministic fills.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0xCD
	}
	return len(p), nil
}

func newTestStack() *allocation.Stack {
	return allocation.NewWithSource(pageSize, zeroReader{})
}

func runLoop(t *testing.T, stack *allocation.Stack, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := shell.New(stack, strings.NewReader(input), &out).Run()
	return out.String(), err
}

func TestRunAllocFreeExit(t *testing.T) {
	stack := newTestStack()
	out, err := runLoop(t, stack, "anon 500000 0.5\nfree 500000\nexit\n")
	if err != nil {
		t.Fatal("Run failed: ", err)
	}
	want := []string{
		"allocated 500000 bytes of anonymous memory, total 500000 bytes over 1 allocations",
		"exiting",
		"",
	}
	if diff := cmp.Diff(want, strings.Split(out, "\n")); diff != "" {
		t.Errorf("Run output mismatch (-want +got):\n%s", diff)
	}
	if got := stack.TotalBytes(); got != 0 {
		t.Errorf("TotalBytes() = %d after freeing everything; want 0", got)
	}
}

func TestRunChunksLargeRequests(t *testing.T) {
	stack := newTestStack()
	out, err := runLoop(t, stack, "anon 2097152 1.0\nanon 1048576 0.0\nexit\n")
	if err != nil {
		t.Fatal("Run failed: ", err)
	}
	// 2 MiB arrives as two 1 MiB records, the 1 MiB request as one more.
	want := []string{
		"allocated 2097152 bytes of anonymous memory, total 2097152 bytes over 2 allocations",
		"allocated 1048576 bytes of anonymous memory, total 3145728 bytes over 3 allocations",
		"exiting",
		"",
	}
	if diff := cmp.Diff(want, strings.Split(out, "\n")); diff != "" {
		t.Errorf("Run output mismatch (-want +got):\n%s", diff)
	}
	if got, want := stack.TotalBytes(), uint64(3145728); got != want {
		t.Errorf("TotalBytes() = %d; want %d", got, want)
	}
	if got, want := stack.Count(), 3; got != want {
		t.Errorf("Count() = %d; want %d", got, want)
	}
}

func TestRunErrors(t *testing.T) {
	for _, tc := range []struct {
		name, input string
	}{
		{"malformed size", "anon abc 0.5\n"},
		{"malformed ratio", "anon 4096 x\n"},
		{"ratio too large", "anon 4096 1.5\n"},
		{"negative ratio", "anon 4096 -0.5\n"},
		{"unknown verb", "mystery 1 2\n"},
		{"free overdraw", "free 4096\n"},
		{"eof before exit", "anon 4096 0.0\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := runLoop(t, newTestStack(), tc.input); err == nil {
				t.Errorf("Run(%q) unexpectedly succeeded", tc.input)
			}
		})
	}
}

func TestRunMalformedInputAllocatesNothing(t *testing.T) {
	stack := newTestStack()
	if _, err := runLoop(t, stack, "anon abc 0.5\n"); err == nil {
		t.Fatal("Run unexpectedly succeeded")
	}
	if got := stack.TotalBytes(); got != 0 {
		t.Errorf("TotalBytes() = %d after malformed command; want 0", got)
	}
}

func TestRunFreeOverdrawLeavesStackIntact(t *testing.T) {
	stack := newTestStack()
	if _, err := runLoop(t, stack, "anon 1048576 0.0\nfree 2097152\n"); err == nil {
		t.Fatal("Run unexpectedly succeeded")
	}
	if got, want := stack.TotalBytes(), uint64(1048576); got != want {
		t.Errorf("TotalBytes() = %d after rejected free; want %d", got, want)
	}
}

func TestRunTokenizesAcrossLines(t *testing.T) {
	// The protocol is whitespace-delimited, not line-delimited.
	stack := newTestStack()
	out, err := runLoop(t, stack, "anon\n4096\n0.0 exit")
	if err != nil {
		t.Fatal("Run failed: ", err)
	}
	if !strings.Contains(out, "exiting") {
		t.Errorf("Run output %q does not contain %q", out, "exiting")
	}
}
