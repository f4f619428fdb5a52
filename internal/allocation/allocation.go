// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package allocation maintains a stack of anonymous memory mappings.
//
// Memory test helpers use a Stack to hold host memory under the control of a
// test bundle. Each mapping is obtained directly from the OS so the Go
// runtime never reclaims or moves it, and each page can be filled with a
// requested fraction of unpredictable bytes to control how well the region
// compresses in zram.
package allocation

import (
	"crypto/rand"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Chunk is the largest single mapping created by Grow. Test bundles size
// their requests in whole MiB, so larger requests are split into records of
// at most this size.
const Chunk = 1 << 20

// record is one in-flight anonymous mapping, exclusively owned by the Stack
// until freed.
type record struct {
	data []byte
}

// Stack owns a LIFO collection of anonymous mappings. Records are freed
// strictly in reverse order of creation; there is no random-access free.
// Stack is not safe for concurrent use, matching the single-threaded command
// loops that drive it.
type Stack struct {
	records    []record
	totalBytes uint64
	pageSize   int
	random     io.Reader
}

// New returns an empty Stack that fills pages from the system entropy
// device.
func New() *Stack {
	return &Stack{pageSize: os.Getpagesize(), random: rand.Reader}
}

// NewWithSource returns an empty Stack with an explicit page size and random
// source. Unit tests use it to make fills deterministic.
func NewWithSource(pageSize int, random io.Reader) *Stack {
	return &Stack{pageSize: pageSize, random: random}
}

// TotalBytes returns the number of bytes held by live records.
func (s *Stack) TotalBytes() uint64 {
	return s.totalBytes
}

// Count returns the number of live records.
func (s *Stack) Count() int {
	return len(s.records)
}

// Allocate maps size bytes of zero-initialized anonymous memory and pushes
// it onto the stack. ratio is the fraction of each page to overwrite with
// random bytes: 0 leaves every page zero (fully compressible), 1 fills every
// page (incompressible). Pages are always touched so the whole mapping is
// resident when Allocate returns.
func (s *Stack) Allocate(size uint64, ratio float64) error {
	if size == 0 {
		return errors.New("allocation size must be positive")
	}
	if ratio < 0 || ratio > 1 {
		return errors.Errorf("compressibility ratio %v outside [0.0, 1.0]", ratio)
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return errors.Wrapf(err, "failed to map %d bytes of anonymous memory (%d bytes held)", size, s.totalBytes)
	}
	if err := s.fill(data, ratio); err != nil {
		unix.Munmap(data)
		return errors.Wrapf(err, "failed to fill %d byte mapping", size)
	}
	s.records = append(s.records, record{data})
	s.totalBytes += size
	return nil
}

// fill writes the leading floor(pageSize*ratio) bytes of every page in data
// from the random source. With ratio 0 a single zero byte is still written
// per page to fault it in without paying for random bytes.
func (s *Stack) fill(data []byte, ratio float64) error {
	randomLen := int(float64(s.pageSize) * ratio)
	for off := 0; off < len(data); off += s.pageSize {
		if randomLen == 0 {
			data[off] = 0
			continue
		}
		end := off + randomLen
		if end > len(data) {
			end = len(data)
		}
		if _, err := io.ReadFull(s.random, data[off:end]); err != nil {
			return errors.Wrap(err, "short read from random source")
		}
	}
	return nil
}

// FreeMostRecent unmaps the most recently created record and pops it from
// the stack. It is an error to call it on an empty Stack.
func (s *Stack) FreeMostRecent() error {
	_, err := s.pop()
	return err
}

func (s *Stack) pop() (uint64, error) {
	if len(s.records) == 0 {
		return 0, errors.New("no allocations to free")
	}
	r := s.records[len(s.records)-1]
	size := uint64(len(r.data))
	if err := unix.Munmap(r.data); err != nil {
		return 0, errors.Wrapf(err, "failed to unmap %d byte mapping", size)
	}
	s.records = s.records[:len(s.records)-1]
	s.totalBytes -= size
	return size, nil
}

// FreeUpTo frees records most-recent-first until at least target bytes have
// been released or the stack is empty, returning the number of bytes
// actually freed. Because records are never split, the amount freed can
// overshoot target; callers depend on that granularity. Requesting more
// than TotalBytes is an error, reported before any record is freed.
func (s *Stack) FreeUpTo(target uint64) (uint64, error) {
	if target > s.totalBytes {
		return 0, errors.Errorf("cannot free %d bytes, only %d bytes allocated", target, s.totalBytes)
	}
	var freed uint64
	for freed < target && len(s.records) > 0 {
		size, err := s.pop()
		if err != nil {
			return freed, err
		}
		freed += size
	}
	return freed, nil
}

// FreeAll releases every record, returning the number of bytes freed.
func (s *Stack) FreeAll() (uint64, error) {
	var freed uint64
	for len(s.records) > 0 {
		size, err := s.pop()
		if err != nil {
			return freed, err
		}
		freed += size
	}
	return freed, nil
}

// Grow allocates size bytes at the given compressibility ratio, split into
// records of at most Chunk bytes.
func (s *Stack) Grow(size uint64, ratio float64) error {
	for size > 0 {
		chunk := size
		if chunk > Chunk {
			chunk = Chunk
		}
		if err := s.Allocate(chunk, ratio); err != nil {
			return err
		}
		size -= chunk
	}
	return nil
}
