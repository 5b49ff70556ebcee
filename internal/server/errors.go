package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-search/internal/headhunter"
	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/llm"
	"github.com/jonathan/talent-search/internal/search"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		apiErr        *headhunter.APIError
		callErr       *keywords.APICallError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs), errors.Is(err, search.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrMissingCredential), errors.Is(err, headhunter.ErrMissingToken), errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, keywords.ErrMalformedKeywords), errors.As(err, &callErr):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable error class sent next to the message.
func errorCode(err error) string {
	switch {
	case errors.Is(err, search.ErrMissingCredential), errors.Is(err, headhunter.ErrMissingToken):
		return "missing_credential"
	case errors.Is(err, search.ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, keywords.ErrMalformedKeywords):
		return "malformed_keywords"
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusGatewayTimeout:
		return "upstream_timeout"
	case http.StatusBadGateway:
		return "upstream_error"
	case http.StatusServiceUnavailable:
		return "not_configured"
	default:
		return "internal_error"
	}
}
