package keywords

import (
	"errors"
	"fmt"
)

// ErrMalformedKeywords marks an extractor response that is not a keyword structure.
var ErrMalformedKeywords = errors.New("malformed keyword response")

// APICallError represents a failed call to the LLM provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a provider response that could not be read as keywords.
// It matches ErrMalformedKeywords under errors.Is.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports ErrMalformedKeywords as a match.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedKeywords
}
