// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoad is matched by every LoadError.
	ErrLoad = errors.New("catalog load failed")

	// ErrEmpty is matched by every EmptyError.
	ErrEmpty = errors.New("catalog is empty")
)

// LoadError reports an unreadable source or missing required columns.
type LoadError struct {
	Source  string
	Missing []string
	Err     error
}

func (e *LoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("load catalog %s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// EmptyError reports that no usable rows remained after validation.
type EmptyError struct {
	Source  string
	Dropped int
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("catalog %s has no usable rows (%d dropped)", e.Source, e.Dropped)
}

// Is reports whether target is ErrEmpty.
func (e *EmptyError) Is(target error) bool {
	return target == ErrEmpty
}
