package embedding

import "errors"

// Common errors returned by oracle implementations.
var (
	// ErrEmptyText is returned when there is no text to embed or classify.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidDimensions is returned when the requested vector
	// dimensionality is not positive.
	ErrInvalidDimensions = errors.New("dimensions must be greater than zero")

	// ErrInvalidResponse is returned when the provider response cannot be
	// used: wrong vector length, missing values, unparseable content.
	ErrInvalidResponse = errors.New("invalid response from embedding provider")

	// ErrTransientFailure is returned for temporary provider errors that may
	// resolve on retry or redelivery.
	ErrTransientFailure = errors.New("transient embedding provider failure")

	// ErrInvalidConfig is returned when an oracle implementation is
	// constructed with unusable configuration.
	ErrInvalidConfig = errors.New("invalid oracle configuration")
)
