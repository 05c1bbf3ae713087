package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nova-editor/novasync/internal/queue"
)

func init() {
	Register(BackendFile, func(path string) (Store, error) {
		return NewFileStore(path), nil
	})
}

// FileStore persists the queue as a single pretty-printed JSON file.
//
// The snapshot is the ordered array of queue items, written atomically
// via a temp file and rename so a crash mid-write never leaves a
// half-replaced snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given snapshot path.
// The file is not touched until the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.Load.
func (s *FileStore) Load() ([]queue.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No snapshot yet: empty queue, not an error.
			return []queue.Item{}, nil
		}
		return nil, fmt.Errorf("failed to read queue snapshot %s: %w", s.path, err)
	}

	var items []queue.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptData, s.path, err)
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: item %d: %v", ErrCorruptData, s.path, i, err)
		}
	}

	return items, nil
}

// Save implements Store.Save.
func (s *FileStore) Save(items []queue.Item) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if items == nil {
		items = []queue.Item{}
	}

	// Marshal with indentation for readability
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue snapshot: %w", err)
	}

	// Write atomically via temp file
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot %s: %w", s.path, err)
	}

	return nil
}

// Path implements Store.Path.
func (s *FileStore) Path() string {
	return s.path
}

// Close implements Store.Close. The file store holds no resources.
func (s *FileStore) Close() error {
	return nil
}
