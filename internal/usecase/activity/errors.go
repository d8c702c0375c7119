// Package activity implements the activity feed pagination engine: the
// batch resolver, cursor builder, page materializer and the session scoped
// pager that ties them together.
package activity

import "errors"

// Sentinel errors for activity use case operations.
var (
	// ErrInvalidCategory indicates an unknown activity category.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidPage indicates a page number that is not a positive integer.
	ErrInvalidPage = errors.New("invalid page")

	// ErrNoActiveCategory is returned by page navigation before a category
	// has been selected.
	ErrNoActiveCategory = errors.New("no active category")

	// ErrSessionNotFound indicates an unknown or expired pager session.
	ErrSessionNotFound = errors.New("session not found")
)
