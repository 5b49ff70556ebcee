package search

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network call when no access token is available.
	ErrMissingCredential = errors.New("access token is not configured")
	// ErrEmptyQuery is returned when the keywords and constraints compile to an empty query.
	ErrEmptyQuery = errors.New("no valid search criteria")
)

// AttemptError represents a failed résumé search call.
type AttemptError struct {
	Attempt string // "primary", "fallback" or a strategy name
	Query   string
	Cause   error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Attempt, e.Cause)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}
