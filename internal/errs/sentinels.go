// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrValidation indicates a local pre-network validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates a rejected or expired session (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork indicates no response was received (connectivity/timeout).
	ErrNetwork = errors.New("network error")

	// ErrServer indicates a non-2xx response with a body.
	ErrServer = errors.New("server error")

	// ErrUpload indicates a failure during image upload; it always aborts submission.
	ErrUpload = errors.New("upload failed")

	// ErrDenied indicates the current role may not perform the action.
	ErrDenied = errors.New("access denied")

	// ErrBusy indicates the submission pipeline is already running.
	ErrBusy = errors.New("submission in progress")

	// ErrCanceled indicates the user dismissed the image picker.
	ErrCanceled = errors.New("canceled")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
