package domain

import "errors"

var (
	// ErrUnauthorized means the caller did not present the configured credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedPayload means the request body is not a single JSON object.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrWriteFailure means an event could not be durably appended to the log.
	ErrWriteFailure = errors.New("write failure")
)
