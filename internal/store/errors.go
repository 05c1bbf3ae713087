package store

import "errors"

// Common errors returned by store operations.
//
// These can be checked using errors.Is():
//
//	if errors.Is(err, store.ErrCorruptData) {
//	    // Snapshot exists but cannot be parsed
//	}
var (
	// ErrCorruptData is returned when a persisted snapshot exists but
	// cannot be parsed into the expected queue structure.
	ErrCorruptData = errors.New("corrupt queue snapshot")

	// ErrUnknownBackend is returned when Open is given a backend name
	// with no registered constructor.
	ErrUnknownBackend = errors.New("unknown store backend")
)
