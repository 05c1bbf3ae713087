// Package store provides durable persistence for the novasync offline queue.
//
// The queue store is a passive durable mirror: the engine reads it once at
// startup and rewrites the full snapshot after every mutating operation.
// Whole-snapshot replacement keeps the persisted format trivially
// inspectable and avoids partial-write corruption.
//
// Two backends are provided:
//   - file: a pretty-printed JSON snapshot (the default, human-diffable)
//   - sqlite: an embedded SQLite database for setups that already carry one
//
// Backends register themselves with the registry in their init() functions
// and are created through Open().
package store

import (
	"fmt"
	"sync"

	"github.com/nova-editor/novasync/internal/queue"
)

// Store persists the full ordered queue snapshot.
//
// Load and Save are blocking I/O; callers must not invoke them while
// holding a lock that concurrent readers need.
type Store interface {
	// Load reads the persisted queue snapshot.
	// A missing snapshot is not an error: Load returns an empty queue.
	// A snapshot that cannot be parsed fails with ErrCorruptData.
	Load() ([]queue.Item, error)

	// Save atomically replaces the snapshot with the full current queue.
	// The entire prior snapshot is discarded; there is no append log.
	Save(items []queue.Item) error

	// Path returns the snapshot location.
	Path() string

	// Close releases any resources held by the backend.
	Close() error
}

// Backend identifies a store implementation.
type Backend string

const (
	// BackendFile persists the queue as a JSON snapshot file.
	BackendFile Backend = "file"

	// BackendSQLite persists the queue in an embedded SQLite database.
	BackendSQLite Backend = "sqlite"
)

// String returns the string representation of the backend.
func (b Backend) String() string {
	return string(b)
}

// Constructor creates a Store for a given snapshot path.
// Implementations register themselves with the registry using Register().
type Constructor func(path string) (Store, error)

var (
	registry      = make(map[Backend]Constructor)
	registryMutex sync.RWMutex
)

// Register registers a store backend constructor.
// This is called from init() functions in backend implementations.
func Register(b Backend, constructor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if constructor == nil {
		panic(fmt.Sprintf("store: Register constructor is nil for backend %s", b))
	}
	if _, exists := registry[b]; exists {
		panic(fmt.Sprintf("store: Register called twice for backend %s", b))
	}

	registry[b] = constructor
}

// RegisteredBackends returns all registered backend names.
func RegisteredBackends() []Backend {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	backends := make([]Backend, 0, len(registry))
	for b := range registry {
		backends = append(backends, b)
	}
	return backends
}

// Open creates a store of the given backend at the given path.
//
// Example:
//
//	st, err := store.Open(store.BackendFile, ".nova/sync-queue.json")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(b Backend, path string) (Store, error) {
	registryMutex.RLock()
	constructor := registry[b]
	registryMutex.RUnlock()

	if constructor == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownBackend, b, RegisteredBackends())
	}

	st, err := constructor(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", b, err)
	}
	return st, nil
}
