package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by every SessionStore when the id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyCompletion is the cause of a GenerationFailure when the model answered with no text.
var ErrEmptyCompletion = errors.New("model returned empty text")

// InvalidVersionError rejects a revert to a version that does not exist.
type InvalidVersionError struct {
	Requested int
	Available int
}

func (e *InvalidVersionError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("invalid version %d: no versions generated yet", e.Requested)
	}
	return fmt.Sprintf("invalid version %d: must be between 1 and %d", e.Requested, e.Available)
}

// GenerationFailure wraps any error raised by the text generator.
type GenerationFailure struct {
	Cause error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}

// ValidationError reports user input rejected before any generation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsRetryable reports whether resubmitting the same request may succeed.
func IsRetryable(err error) bool {
	var gf *GenerationFailure
	return errors.As(err, &gf)
}
