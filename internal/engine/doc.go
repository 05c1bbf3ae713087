// Package engine implements the offline sync queue at the heart of novasync.
//
// The engine buffers local mutations made while disconnected, delivers them
// to a remote authority through a pluggable Adapter, and exposes conflict
// resolution when local and remote state diverge.
//
// # Ownership
//
// The engine exclusively owns the in-memory queue: an ordered sequence of
// items where insertion order is enqueue order. The store is a passive
// durable mirror read once at startup and rewritten after every mutating
// operation (enqueue, flush, resolve, clear). No other component mutates
// queue state directly; Pending returns copies, never references into
// engine state.
//
// # Item lifecycle
//
// Each item moves Pending -> {Synced, Conflicted, Failed}. Synced items
// are pruned at the end of the flush that produced them: the queue is a
// work-list, not a history log. Failed items simply remain pending and are
// retried on the next flush; there is no dead-letter state. Conflicted
// items remain pending and are reported in the FlushResult so the caller
// can route them to resolution.
//
// # Concurrency
//
// All mutating operations execute under a single queue lock. Flush is the
// only operation that performs out-of-process work, so it does not hold
// the queue lock across adapter calls: it snapshots the pending items
// under the lock, calls the adapter unlocked, and reacquires the lock
// briefly to commit each item's state. A flush-in-progress guard rejects
// a second concurrent flush with ErrFlushInProgress rather than letting
// two flushes interleave over the same queue.
//
// # Usage
//
//	st, err := store.Open(store.BackendFile, ".nova/sync-queue.json")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	eng, err := engine.New(st, myAdapter, nil)
//	if err != nil {
//	    return err
//	}
//
//	_, err = eng.Enqueue(queue.Item{Action: queue.ActionUpdate, Path: "/notes/a.md"})
//	if err != nil {
//	    return err
//	}
//
//	result, err := eng.Flush(ctx)
package engine
