package backend

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// The token store has already been cleared when it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a request the backend answered with a failure payload or a
// non-success status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Endpoint)
}

// IsAPIError reports whether err wraps an *APIError, returning it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
