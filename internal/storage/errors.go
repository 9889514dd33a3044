// Package storage persists the portfolio snapshot history with pluggable
// backends: local file, GCS object, and hybrid (both).
package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying backend failures.
var (
	// ErrUnavailable marks a transient backend failure. Retryable; the
	// hybrid backend recovers it through the pending-sync queue.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrFatal marks a permission or configuration failure. Surfaced
	// immediately, never retried.
	ErrFatal = errors.New("storage failure")
)

// CorruptionError indicates an existing history that cannot be parsed.
// The underlying data is always left untouched; recovery requires manual
// intervention, never an automatic overwrite.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("history at %s contains invalid data and has been preserved: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}
