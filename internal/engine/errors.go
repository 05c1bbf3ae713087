package engine

import "errors"

// Common errors returned by engine operations.
//
// These can be checked using errors.Is():
//
//	if errors.Is(err, engine.ErrItemNotFound) {
//	    // The resolution targeted an id absent from the queue
//	}
var (
	// ErrItemNotFound is returned when a resolution targets an item id
	// that is not present in the queue.
	ErrItemNotFound = errors.New("queue item not found")

	// ErrFlushInProgress is returned when Flush is called while another
	// flush is still in flight. Flushes never interleave; callers should
	// retry after the current flush completes.
	ErrFlushInProgress = errors.New("flush already in progress")

	// ErrAdapterFailure wraps an error returned by the remote sync
	// adapter, as opposed to a normal Failed outcome. The affected item
	// stays pending and is not retried within the same flush.
	ErrAdapterFailure = errors.New("remote sync adapter failure")

	// ErrDuplicateID is returned when Enqueue is given an explicit id
	// that is already present in the queue.
	ErrDuplicateID = errors.New("duplicate queue item id")

	// ErrInvalidResolution is returned when a resolution strategy would
	// leave the item in a state the queue cannot persist and reload,
	// such as merging content into a delete item. The item is left
	// untouched.
	ErrInvalidResolution = errors.New("resolution produced invalid item")
)
