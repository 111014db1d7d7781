package nomics

import "errors"

var (
	// ErrRetryableRequest marks attempts worth repeating (transport errors, 5xx, 429)
	ErrRetryableRequest = errors.New("retryable request error")
	// ErrNonRetryable marks attempts that would fail the same way again
	ErrNonRetryable = errors.New("non-retryable error")
	// ErrMissingAPIKey is returned before any request when no key is configured
	ErrMissingAPIKey = errors.New("nomics api key is required")
)
