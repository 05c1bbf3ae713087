package engine

import (
	"context"

	"github.com/nova-editor/novasync/internal/queue"
)

// Outcome is the tri-state result of delivering one item to the remote
// authority.
type Outcome int

const (
	// OutcomeSynced indicates the remote accepted the mutation.
	OutcomeSynced Outcome = iota

	// OutcomeConflict indicates local and remote versions of the resource
	// disagree and cannot be auto-resolved.
	OutcomeConflict

	// OutcomeFailed indicates a transient delivery failure. The item stays
	// pending and is retried on the next flush.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Adapter performs the actual exchange with the remote authority.
//
// The engine calls Sync once per pending item, in enqueue order: if two
// mutations target the same path, the adapter observes them in causal
// order, which is what lets it implement last-write-wins downstream.
//
// The adapter receives a copy of the item and must not assume it can
// mutate engine state. It is responsible for bounding its own call
// latency and must always return one of the three outcomes rather than
// blocking indefinitely; the engine imposes no per-call timeout of its
// own. A returned error is treated like a transient failure: the item
// stays pending and is not retried within the same flush.
type Adapter interface {
	Sync(ctx context.Context, item queue.Item) (Outcome, error)
}

// Loopback is an Adapter that accepts every item without talking to any
// remote. It stands in until a real transport is configured, preserving
// the engine's state-machine behavior (items flow to synced and are
// pruned) for local-only use.
type Loopback struct{}

// Sync implements Adapter.
func (Loopback) Sync(ctx context.Context, item queue.Item) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSynced, nil
}
