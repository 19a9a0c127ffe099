package gemini

import "errors"

// Package-specific errors
var (
	// ErrEmptyContext is returned when suggestion generation is attempted
	// with no usable prompt at all (nil template output).
	ErrEmptyContext = errors.New("context text produced an empty prompt")
)
