// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package oomscore adjusts the kernel OOM killer priority of a process.
//
// Memory helpers set their own oom_score_adj before allocating so the kernel
// kills them in the order the test expects when the host runs out of memory.
package oomscore

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Path is the OOM score adjustment control file for the current process.
const Path = "/proc/self/oom_score_adj"

// Valid oom_score_adj values span [Min, Max]. Min effectively exempts the
// process from the OOM killer.
const (
	Min = -1000
	Max = 1000
)

// Set writes score verbatim to the current process's oom_score_adj and
// verifies the kernel kept it.
func Set(score string) error {
	return SetFile(Path, score)
}

// SetFile writes score to the control file at path, then reads it back and
// fails unless the stored value equals score exactly. Sandboxing layers can
// silently clamp or discard the write, and a helper that proceeds with the
// wrong score produces misleading OOM ordering, so a mismatch is an error
// rather than a warning.
func SetFile(path, score string) error {
	if err := os.WriteFile(path, []byte(score), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %q to %s", score, path)
	}
	stored, err := readTrimmed(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read back %s", path)
	}
	if stored != score {
		return errors.Errorf("%s is %q after writing %q; the value may have been clamped", path, stored, score)
	}
	return nil
}

// Get returns the current process's oom_score_adj.
func Get() (int, error) {
	return GetFile(Path)
}

// GetForPID returns the oom_score_adj of the process with the given PID.
func GetForPID(pid int) (int, error) {
	return GetFile(fmt.Sprintf("/proc/%d/oom_score_adj", pid))
}

// GetFile reads and parses the oom_score_adj control file at path.
func GetFile(path string) (int, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}
	score, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s", path)
	}
	return int(score), nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
