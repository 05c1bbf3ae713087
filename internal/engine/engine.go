package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/nova-editor/novasync/internal/queue"
	"github.com/nova-editor/novasync/internal/resolve"
	"github.com/nova-editor/novasync/internal/store"
)

// Engine owns the in-memory sync queue and orchestrates enqueue, flush,
// conflict resolution, and statistics. See the package documentation for
// the ownership and concurrency model.
type Engine struct {
	store   store.Store
	adapter Adapter
	logger  *log.Logger

	mu    sync.Mutex
	items []queue.Item

	// flushMu serializes flushes. Held for the whole flush so a second
	// concurrent Flush fails fast instead of interleaving.
	flushMu sync.Mutex
}

// New creates an Engine backed by the given store and remote adapter.
//
// The persisted queue snapshot is loaded immediately; a missing snapshot
// yields an empty queue. If logger is nil, a default logger writing to
// stderr is used.
func New(st store.Store, adapter Adapter, logger *log.Logger) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if adapter == nil {
		return nil, fmt.Errorf("adapter cannot be nil")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[engine] ", log.LstdFlags)
	}

	items, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	return &Engine{
		store:   st,
		adapter: adapter,
		logger:  logger,
		items:   items,
	}, nil
}

// Enqueue appends a mutation to the end of the queue and persists
// immediately. The item's id is assigned here if empty; a caller-supplied
// id already present in the queue is rejected with ErrDuplicateID. A zero
// timestamp defaults to now. The stored item is returned.
//
// Multiple pending mutations to the same path are allowed and are flushed
// in enqueue order; the engine does not collapse them. Collapsing is a
// policy decision that belongs to the adapter or resolver.
//
// If persistence fails the error is reported and the in-memory queue may
// be ahead of the snapshot; callers can reload from disk to re-synchronize.
func (e *Engine) Enqueue(item queue.Item) (queue.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.SetDefaults()
	item.Synced = false

	if err := item.Validate(); err != nil {
		return queue.Item{}, fmt.Errorf("invalid queue item: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ID == item.ID {
			return queue.Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
	}

	e.items = append(e.items, item)
	if err := e.store.Save(e.items); err != nil {
		return queue.Item{}, fmt.Errorf("failed to persist queue: %w", err)
	}

	e.logger.Printf("Enqueued %s %s (%s)", item.Action, item.Path, item.ID)
	return cloneItem(item), nil
}

// Pending returns all unsynced items in queue order.
//
// The returned items are copies; mutating them has no effect on engine
// state.
func (e *Engine) Pending() []queue.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingLocked()
}

// pendingLocked snapshots unsynced items. Caller must hold e.mu.
func (e *Engine) pendingLocked() []queue.Item {
	pending := make([]queue.Item, 0, len(e.items))
	for _, item := range e.items {
		if !item.Synced {
			pending = append(pending, cloneItem(item))
		}
	}
	return pending
}

// Flush delivers all pending items to the remote adapter, in enqueue
// order, and returns the aggregated result.
//
// Per-item outcomes never abort the flush: a Failed outcome or adapter
// error increments the failed count and the item stays pending; a
// Conflict leaves the item pending and records its id. After the
// iteration all items marked synced are pruned and the resulting queue
// is persisted.
//
// Only one flush may be in flight; a concurrent call fails fast with
// ErrFlushInProgress. The queue lock is not held across adapter calls.
//
// Cancelling ctx stops the flush between items: items already synced stay
// synced and are pruned by the final persist, items not yet reached stay
// pending, and the partial FlushResult is returned along with ctx.Err().
func (e *Engine) Flush(ctx context.Context) (*queue.FlushResult, error) {
	if !e.flushMu.TryLock() {
		return nil, ErrFlushInProgress
	}
	defer e.flushMu.Unlock()

	e.mu.Lock()
	pending := e.pendingLocked()
	e.mu.Unlock()

	result := &queue.FlushResult{Conflicts: []string{}}
	var cancelled error

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}

		outcome, err := e.adapter.Sync(ctx, item)
		if err != nil {
			// Distinct from a Failed outcome, but handled the same way:
			// the item stays pending for the next flush.
			e.logger.Printf("Flush: %s %v: %v", item.ID, ErrAdapterFailure, err)
			result.Failed++
			continue
		}

		switch outcome {
		case OutcomeSynced:
			if e.markSynced(item) {
				result.Processed++
			} else {
				e.logger.Printf("Flush: %s changed during delivery, keeping pending", item.ID)
			}
		case OutcomeConflict:
			result.Conflicts = append(result.Conflicts, item.ID)
		case OutcomeFailed:
			result.Failed++
		default:
			e.logger.Printf("Flush: adapter returned unknown outcome %d for %s", outcome, item.ID)
			result.Failed++
		}
	}

	e.mu.Lock()
	kept := e.items[:0]
	for _, item := range e.items {
		if !item.Synced {
			kept = append(kept, item)
		}
	}
	e.items = kept
	err := e.store.Save(e.items)
	e.mu.Unlock()

	if err != nil {
		return result, fmt.Errorf("failed to persist queue after flush: %w", err)
	}

	e.logger.Printf("Flush complete: processed=%d failed=%d conflicts=%d",
		result.Processed, result.Failed, len(result.Conflicts))

	if cancelled != nil {
		return result, cancelled
	}
	return result, nil
}

// markSynced flags an item as synced, but only if it still matches the
// snapshot that was delivered to the adapter. The queue lock is released
// during adapter calls, so a resolution may have rewritten the item in
// the meantime; marking it then would prune content the remote never saw.
// Returns false if the item is gone or changed, leaving it pending.
func (e *Engine) markSynced(delivered queue.Item) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ID != delivered.ID {
			continue
		}
		if e.items[i].Synced != delivered.Synced ||
			e.items[i].Timestamp != delivered.Timestamp ||
			!sameContent(e.items[i].Content, delivered.Content) {
			return false
		}
		e.items[i].Synced = true
		return true
	}
	return false
}

// sameContent reports whether two optional payloads are equal.
func sameContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ResolveConflict applies a resolution directive to the queued item with
// the given id and persists the queue.
//
// Fails with ErrItemNotFound if no such item exists, with
// resolve.ErrUnknownStrategy for an unrecognized strategy, with
// resolve.ErrMissingMergeContent when merge is invoked without resolved
// content, and with ErrInvalidResolution when the strategy would produce
// an item the queue cannot persist, such as merging content into a
// delete. No partial state change occurs on any failure path: either the
// whole resolution succeeds and is persisted, or nothing changes.
func (e *Engine) ResolveConflict(id string, res queue.Resolution) error {
	strategy, err := resolve.Get(res.Strategy)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.items {
		if e.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	// Apply to a copy so a failed strategy or persist leaves the queue
	// untouched.
	orig := e.items[idx]
	modified := cloneItem(orig)
	if err := strategy.Apply(&modified, res); err != nil {
		return err
	}

	// The resolved item must survive a store round trip; committing an
	// invalid item would persist a snapshot Load rejects as corrupt.
	if err := modified.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, err)
	}

	e.items[idx] = modified
	if err := e.store.Save(e.items); err != nil {
		e.items[idx] = orig
		return fmt.Errorf("failed to persist queue: %w", err)
	}

	e.logger.Printf("Resolved %s with strategy %s", id, res.Strategy)
	return nil
}

// Clear discards all items, pending and synced, and persists the empty
// queue. This is a hard reset for use after a full remote re-sync, not a
// normal-path operation.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	if err := e.store.Save(nil); err != nil {
		return fmt.Errorf("failed to persist cleared queue: %w", err)
	}

	e.logger.Println("Queue cleared")
	return nil
}

// Stats computes a snapshot of queue statistics. Pure in-memory
// computation: no I/O, no mutation.
func (e *Engine) Stats() queue.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := queue.Stats{
		Total:    len(e.items),
		ByAction: make(map[string]int),
	}
	for _, item := range e.items {
		if item.Synced {
			stats.Synced++
		} else {
			stats.Pending++
		}
		stats.ByAction[item.Action.String()]++
	}
	return stats
}

// cloneItem returns a copy whose content does not alias the original.
func cloneItem(item queue.Item) queue.Item {
	if item.Content != nil {
		content := *item.Content
		item.Content = &content
	}
	return item
}
