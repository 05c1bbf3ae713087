// Package queue provides the data structures for the novasync offline queue.
package queue

import (
	"fmt"
	"time"
)

// Action is the kind of local mutation a queue item carries.
type Action string

const (
	// ActionCreate indicates a new resource was created locally.
	ActionCreate Action = "create"

	// ActionUpdate indicates an existing resource was modified locally.
	ActionUpdate Action = "update"

	// ActionDelete indicates a resource was deleted locally.
	ActionDelete Action = "delete"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Valid reports whether the action is one of the recognized kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Item represents one buffered local mutation awaiting confirmation
// from the remote authority.
//
// Items are flat and JSON round-trippable so the on-disk queue snapshot
// stays human-diffable. Timestamps are unix seconds and are used for
// tie-breaking and last-write-wins comparisons downstream.
type Item struct {
	// ID is the opaque unique identifier, assigned at enqueue time.
	ID string `json:"id"`

	// Action is the mutation kind: create, update, or delete.
	Action Action `json:"action"`

	// Path is the logical resource identifier the mutation targets.
	Path string `json:"path"`

	// Content is the optional payload. Absent for delete.
	Content *string `json:"content,omitempty"`

	// Timestamp is the creation time in unix seconds.
	Timestamp int64 `json:"timestamp"`

	// Synced is the completion flag. Synced items are transient:
	// the engine prunes them at the end of the flush that produced them.
	Synced bool `json:"synced"`
}

// Validate checks if the Item has valid field values.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required")
	}
	if i.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !i.Action.Valid() {
		return fmt.Errorf("action must be create, update, or delete (got %q)", i.Action)
	}
	if i.Action == ActionDelete && i.Content != nil {
		return fmt.Errorf("delete items must not carry content")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (i *Item) SetDefaults() {
	if i.Timestamp == 0 {
		i.Timestamp = time.Now().Unix()
	}
}

// Resolution is a conflict resolution directive applied to exactly one
// queued item. The version markers are supplied by the adapter/UI for
// display and audit; the resolver does not interpret them.
type Resolution struct {
	// Strategy selects resolver behavior, e.g. "last-write-wins" or "merge".
	Strategy string `json:"strategy"`

	// LocalVersion is the local version marker for display/audit.
	LocalVersion string `json:"local_version"`

	// RemoteVersion is the remote version marker for display/audit.
	RemoteVersion string `json:"remote_version"`

	// ResolvedContent is the caller-computed content. Required for "merge".
	ResolvedContent *string `json:"resolved_content,omitempty"`
}

// FlushResult is the outcome of one flush cycle. It is a one-shot report
// to the caller and is never persisted.
type FlushResult struct {
	// Processed is the number of items the adapter accepted.
	Processed int `json:"processed"`

	// Failed is the number of items that failed transiently and remain
	// pending for the next flush.
	Failed int `json:"failed"`

	// Conflicts lists the IDs of items the adapter reported as conflicted.
	Conflicts []string `json:"conflicts"`
}

// Stats is a derived snapshot of queue state, computed on demand.
type Stats struct {
	// Total is the number of items currently held, synced or not.
	Total int `json:"total"`

	// Pending is the number of items with Synced == false.
	Pending int `json:"pending"`

	// Synced is the number of items already confirmed but not yet pruned.
	Synced int `json:"synced"`

	// ByAction maps each action kind to its item count.
	ByAction map[string]int `json:"by_action"`
}
