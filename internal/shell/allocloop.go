// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.chromium.org/tast-helpers/internal/allocation"
)

// AllocLoop implements the signed-size line protocol used by
// memory.NewCmdAlloc in test bundles: each input line carries a byte count,
// positive to allocate and negative to free, and the reply is the running
// total of allocated bytes. An empty line or end of input terminates the
// loop after freeing everything.
type AllocLoop struct {
	stack *allocation.Stack
	ratio float64
	sc    *bufio.Scanner
	out   *bufio.Writer
}

// NewAllocLoop returns an AllocLoop allocating at the given compressibility
// ratio, reading line requests from r and writing totals to w.
func NewAllocLoop(stack *allocation.Stack, ratio float64, r io.Reader, w io.Writer) *AllocLoop {
	return &AllocLoop{stack: stack, ratio: ratio, sc: bufio.NewScanner(r), out: bufio.NewWriter(w)}
}

// Run processes size requests until an empty line or EOF.
func (l *AllocLoop) Run() error {
	for l.sc.Scan() {
		line := strings.TrimSpace(l.sc.Text())
		if line == "" {
			break
		}
		size, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return errors.Errorf("%q is not a byte count", line)
		}
		if size >= 0 {
			err = l.stack.Grow(uint64(size), l.ratio)
		} else {
			_, err = l.stack.FreeUpTo(uint64(-size))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(l.out, "%d\n", l.stack.TotalBytes())
		if err := l.out.Flush(); err != nil {
			return errors.Wrap(err, "failed to flush output")
		}
	}
	if err := l.sc.Err(); err != nil {
		return errors.Wrap(err, "failed to read request")
	}
	_, err := l.stack.FreeAll()
	return err
}
