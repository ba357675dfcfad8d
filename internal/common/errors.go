// Package common defines the sentinel errors shared by the backend, the client
// SDK and the client-side components. Callers match them with errors.Is.
package common

import "errors"

var (
	// no acting identity
	ErrUnauthenticated = errors.New("unauthenticated")

	// acting identity is not the owner of the resource
	ErrForbidden = errors.New("permission denied")

	// repository-level errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// transient store or network failure on a write
	ErrRemoteWrite = errors.New("remote write failed")

	ErrValidation = errors.New("validation error")

	ErrInvalidToken = errors.New("invalid token")

	// edit workflow
	ErrEditInProgress = errors.New("another post is being edited")
)
