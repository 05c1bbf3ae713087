// Package resolve provides pluggable conflict resolution strategies for
// queued sync items.
//
// A strategy is applied to exactly one item already in the queue. The
// built-in strategies are:
//
//   - last-write-wins: schedules the item for retry with no content
//     change; the remote adapter performs the actual timestamp
//     comparison on the next flush.
//   - merge: overwrites the item's content with caller-computed merged
//     content and schedules a retry.
//
// Strategies register themselves by name in init() functions and are
// looked up with Get(). The engine owns item lookup and persistence;
// a strategy only mutates the item it is handed.
package resolve

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nova-editor/novasync/internal/queue"
)

// Common errors returned by resolution.
var (
	// ErrUnknownStrategy is returned when a resolution names a strategy
	// with no registered implementation. The item is left unmodified.
	ErrUnknownStrategy = errors.New("unknown conflict strategy")

	// ErrMissingMergeContent is returned when the merge strategy is
	// invoked without resolved content. This is a caller error.
	ErrMissingMergeContent = errors.New("merge resolution requires resolved content")
)

// Strategy applies one conflict resolution directive to one queued item.
//
// Apply mutates the item in place. It must either fully succeed or leave
// the item untouched; the engine relies on this to guarantee no partial
// state change on failure.
type Strategy interface {
	// Name returns the strategy name used in Resolution.Strategy.
	Name() string

	// Apply applies the resolution directive to the item.
	Apply(item *queue.Item, res queue.Resolution) error
}

var (
	registry      = make(map[string]Strategy)
	registryMutex sync.RWMutex
)

// Register registers a strategy under its name.
// Called from init() functions of strategy implementations.
func Register(s Strategy) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if s == nil {
		panic("resolve: Register strategy is nil")
	}
	if _, exists := registry[s.Name()]; exists {
		panic(fmt.Sprintf("resolve: Register called twice for strategy %s", s.Name()))
	}

	registry[s.Name()] = s
}

// Get returns the strategy registered under name.
// Fails with ErrUnknownStrategy for unrecognized names.
func Get(name string) (Strategy, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStrategy, name, names())
	}
	return s, nil
}

// Strategies returns the names of all registered strategies.
func Strategies() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return names()
}

// names returns registered strategy names. Caller must hold registryMutex.
func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
