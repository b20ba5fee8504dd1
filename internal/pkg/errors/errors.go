package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotConfigured marks a provider whose credentials are absent.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrNoUsableRecords means a response parsed but nothing survived normalization.
	ErrNoUsableRecords = errors.New("no usable records")
	// ErrProvidersExhausted is returned when every strategy in a chain failed.
	ErrProvidersExhausted = errors.New("all providers exhausted")
)
