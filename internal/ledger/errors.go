// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrWrite is matched by every WriteError.
	ErrWrite = errors.New("ledger write failed")

	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("ledger closed")
)

// WriteError reports that a backend failed to persist an interaction.
type WriteError struct {
	Backend string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ledger %s: append: %v", e.Backend, e.Err)
}

// Is reports whether target is ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
