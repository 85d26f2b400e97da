package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures reaching the service.
	ErrUnavailable = errors.New("transactions service unavailable")
	// ErrMalformed reports a response body that does not have the expected shape.
	ErrMalformed = errors.New("malformed transactions response")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transactions service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("transactions service returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is on the server side.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}
