package tool

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks upstream failures worth retrying once: network
	// errors and 5xx-class responses.
	ErrTransient = errors.New("tool: transient upstream failure")
	// ErrInvalidInput marks validation failures that must never be retried.
	ErrInvalidInput = errors.New("tool: invalid input")
)

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsTransient reports whether err carries the transient marker.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
