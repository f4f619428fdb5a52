// Copyright 2024 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command contains code shared by the helper executables.
//
// Helpers report every failure to stderr and terminate; there is no local
// recovery, since a helper that degrades silently would invalidate the test
// driving it. Library code returns ordinary errors and only main decides to
// exit, going through WriteError so each binary reports status the same way.
package command

import (
	"fmt"
	"io"
	"path/filepath"
)

// StatusError implements the error interface and carries the process exit
// status to use when the error reaches main.
type StatusError struct {
	msg    string
	status int
}

func (e *StatusError) Error() string {
	return e.msg
}

// Status returns e's exit status.
func (e *StatusError) Status() int {
	return e.status
}

// NewStatusErrorf creates a StatusError with the passed status and formatted
// message.
func NewStatusErrorf(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{fmt.Sprintf(format, args...), status}
}

// UsageErrorf creates a StatusError for a bad invocation. args[0] is the
// program path as invoked; usage describes the expected arguments.
func UsageErrorf(args []string, usage string) *StatusError {
	return &StatusError{fmt.Sprintf("usage: %s %s", filepath.Base(args[0]), usage), 1}
}

// WriteError writes a newline-terminated fatal error to w and returns the
// status code to pass to os.Exit. Errors that are not *StatusError exit
// with status 1.
func WriteError(w io.Writer, err error) int {
	status := 1
	if se, ok := err.(*StatusError); ok {
		status = se.status
	}
	msg := err.Error()
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	io.WriteString(w, msg)
	return status
}
