package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey means the AGI credential is not configured; no call is attempted.
	ErrMissingAPIKey = errors.New("AGI_API_KEY is not configured on the server")

	// ErrMalformedOutput means the completion text was not JSON, even after cleanup.
	ErrMalformedOutput = errors.New("ai output is not valid JSON")

	// ErrSchemaMismatch means a field was present but had the wrong type.
	ErrSchemaMismatch = errors.New("ai output does not match the response schema")

	// ErrUpstreamTimeout means the completion call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("ai request timed out")

	// ErrEmptyCompletion means the provider answered without any choice.
	ErrEmptyCompletion = errors.New("ai returned no choices")

	// ErrUpstreamUnavailable means the call failed before any HTTP status came back.
	ErrUpstreamUnavailable = errors.New("ai service unreachable")
)

// UpstreamError is a non-success reply from the completion service.
// Body holds the raw response body as sent by the provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AGI API error: %s", e.Body)
}
