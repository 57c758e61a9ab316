package chat

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers.
var (
	// ErrValidation covers malformed input: empty message bodies,
	// unknown conversation kinds, bad ids.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden covers authorship violations and posting into a
	// conversation the caller does not belong to.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers absent messages, channels, threads and pin
	// targets outside the referenced conversation.
	ErrNotFound = errors.New("not found")
)
