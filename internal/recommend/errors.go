// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is matched by every ValidationError.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownCategory is matched by every UnknownCategoryError.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNoSession is returned when an operation is given a nil session.
	ErrNoSession = errors.New("no session")

	// ErrUnknownPlace is returned for place names not in the catalog or
	// the session's filtered set.
	ErrUnknownPlace = errors.New("unknown place")

	// ErrRelatedUnavailable is returned by RelatedPlaces before the session
	// is personalized or when the category is not a favourite.
	ErrRelatedUnavailable = errors.New("related places unavailable")
)

// ValidationError reports a query field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// Is reports whether target is ErrInvalidQuery.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// UnknownCategoryError reports a category absent from the content index.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Category)
}

// Is reports whether target is ErrUnknownCategory.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}
