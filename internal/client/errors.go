package client

import (
	"errors"
	"fmt"
	"net/http"

	"postfeed/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// statusError maps a REST status back to the shared sentinel errors.
func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}

	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = common.ErrUnauthenticated
	case http.StatusForbidden:
		sentinel = common.ErrForbidden
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		sentinel = common.ErrValidation
	case http.StatusConflict:
		sentinel = common.ErrAlreadyExists
	default:
		return fmt.Errorf("server returned %d: %s", status, message)
	}

	return fmt.Errorf("%s: %w", message, sentinel)
}

// callableError maps a callable status code back to the sentinel errors.
func callableError(code, message string) error {
	var sentinel error
	switch code {
	case "unauthenticated":
		sentinel = common.ErrUnauthenticated
	case "permission-denied":
		sentinel = common.ErrForbidden
	case "not-found":
		sentinel = common.ErrNotFound
	case "invalid-argument":
		sentinel = common.ErrValidation
	case "already-exists":
		sentinel = common.ErrAlreadyExists
	default:
		return fmt.Errorf("function failed (%s): %s", code, message)
	}

	return fmt.Errorf("%s: %w", message, sentinel)
}
