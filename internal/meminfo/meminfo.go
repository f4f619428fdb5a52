// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package meminfo reports system memory availability.
//
// Bulk-allocating helpers log a snapshot before touching memory so that a
// failed run records how much headroom the host had.
package meminfo

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
)

// MiB is the unit snapshots are reported in.
const MiB = 1 << 20

// Snapshot holds system memory counters at a point in time.
type Snapshot struct {
	TotalBytes     uint64
	AvailableBytes uint64
	SwapTotalBytes uint64
	SwapFreeBytes  uint64
}

// Read returns a snapshot of current system memory.
func Read() (*Snapshot, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read virtual memory stats")
	}
	sw, err := mem.SwapMemory()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read swap stats")
	}
	return &Snapshot{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		SwapTotalBytes: sw.Total,
		SwapFreeBytes:  sw.Free,
	}, nil
}

// String formats the snapshot in MiB, the unit memory tests report in.
func (s *Snapshot) String() string {
	return fmt.Sprintf("total %d MiB, available %d MiB, swap %d/%d MiB free",
		s.TotalBytes/MiB, s.AvailableBytes/MiB, s.SwapFreeBytes/MiB, s.SwapTotalBytes/MiB)
}
