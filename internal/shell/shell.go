// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shell implements the stdin protocols spoken by the memory helpers.
//
// A test bundle drives a helper from another process, so every reply is
// flushed as soon as a command completes; the flush is the bundle's only
// signal that the helper has finished the command. All input errors are
// fatal to the loop: the bundle scripts these helpers and malformed input
// means the test itself is broken.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"go.chromium.org/tast-helpers/internal/allocation"
)

// Loop reads whitespace-delimited commands and drives an allocation Stack.
//
// Commands:
//
//	anon <size> <ratio>  allocate size bytes at the given compressibility
//	free <size>          free at least size bytes, most-recent-first
//	exit                 terminate the loop
type Loop struct {
	stack *allocation.Stack
	sc    *bufio.Scanner
	out   *bufio.Writer
}

// New returns a Loop reading commands from r and writing confirmations to w.
func New(stack *allocation.Stack, r io.Reader, w io.Writer) *Loop {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &Loop{stack: stack, sc: sc, out: bufio.NewWriter(w)}
}

// Run processes commands until exit. It returns nil on a clean exit and an
// error on unknown commands, malformed arguments, unreadable input, or any
// allocation failure. No command is read after an error.
func (l *Loop) Run() error {
	for {
		verb, err := l.next()
		if err != nil {
			return err
		}
		switch verb {
		case "anon":
			err = l.anon()
		case "free":
			err = l.free()
		case "exit":
			fmt.Fprintln(l.out, "exiting")
			return l.out.Flush()
		default:
			return errors.Errorf("unknown command %q", verb)
		}
		if err != nil {
			return err
		}
		if err := l.out.Flush(); err != nil {
			return errors.Wrap(err, "failed to flush output")
		}
	}
}

func (l *Loop) anon() error {
	size, err := l.nextUint()
	if err != nil {
		return errors.Wrap(err, "anon: bad size")
	}
	ratio, err := l.nextRatio()
	if err != nil {
		return errors.Wrap(err, "anon: bad ratio")
	}
	if err := l.stack.Grow(size, ratio); err != nil {
		return err
	}
	fmt.Fprintf(l.out, "allocated %d bytes of anonymous memory, total %d bytes over %d allocations\n",
		size, l.stack.TotalBytes(), l.stack.Count())
	return nil
}

func (l *Loop) free() error {
	size, err := l.nextUint()
	if err != nil {
		return errors.Wrap(err, "free: bad size")
	}
	_, err = l.stack.FreeUpTo(size)
	return err
}

// next returns the next input token. Input ending before an exit command is
// an error.
func (l *Loop) next() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read command")
		}
		return "", errors.New("unexpected end of input")
	}
	return l.sc.Text(), nil
}

func (l *Loop) nextUint() (uint64, error) {
	tok, err := l.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, errors.Errorf("%q is not an unsigned integer", tok)
	}
	return n, nil
}

func (l *Loop) nextRatio() (float64, error) {
	tok, err := l.next()
	if err != nil {
		return 0, err
	}
	ratio, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Errorf("%q is not a number", tok)
	}
	if ratio < 0 || ratio > 1 {
		return 0, errors.Errorf("ratio %v outside [0.0, 1.0]", ratio)
	}
	return ratio, nil
}
