package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input rejected before or by the server as invalid.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized means the server rejected the presented credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPINRequired is the login second-factor challenge. The session turns
	// it into an outcome; it never reaches presentation code as an error.
	ErrPINRequired = errors.New("pin required")
	// ErrSessionExpired means the stored access token is stale or undecodable.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotFound and ErrConflict together form the "job vanished or changed
	// state" outcome of deletions.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrTransport covers unreachable servers and malformed responses.
	ErrTransport = errors.New("transport error")
	// ErrNotAuthenticated is returned for operations that need a session
	// when none is resolved and authenticated.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrStaleResult is returned when a response arrives after the session
	// it was issued for has been replaced or cleared.
	ErrStaleResult = errors.New("stale result discarded")
	// ErrLocalDataNotAvailable reports a failure to read local state.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// APIError is a non-2xx answer from the API. Message is the server's error
// text, unmodified.
type APIError struct {
	StatusCode  int
	Message     string
	PINRequired bool

	kind error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.kind, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.kind }

// newAPIError classifies a status code into the sentinel taxonomy.
func newAPIError(status int, message string, pinRequired bool) *APIError {
	e := &APIError{StatusCode: status, Message: message, PINRequired: pinRequired}
	switch {
	case status == http.StatusUnauthorized && pinRequired:
		e.kind = ErrPINRequired
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.kind = ErrUnauthorized
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		e.kind = ErrValidation
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	case status == http.StatusConflict:
		e.kind = ErrConflict
	default:
		e.kind = ErrTransport
	}
	return e
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: malformed response: %s", ErrTransport, fmt.Sprintf(format, args...))
}
