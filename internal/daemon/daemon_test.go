package daemon

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nova-editor/novasync/internal/engine"
	"github.com/nova-editor/novasync/internal/queue"
	"github.com/nova-editor/novasync/internal/store"
)

// recordingAdapter accepts everything and records what it saw.
type recordingAdapter struct {
	mu   sync.Mutex
	seen []queue.Item
}

func (r *recordingAdapter) Sync(ctx context.Context, item queue.Item) (engine.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, item)
	return engine.OutcomeSynced, nil
}

func (r *recordingAdapter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func setupEngine(t *testing.T, adapter engine.Adapter) *engine.Engine {
	t.Helper()

	st := store.NewFileStore(filepath.Join(t.TempDir(), "sync-queue.json"))
	eng, err := engine.New(st, adapter, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return eng
}

func testConfig() *Config {
	return &Config{
		FlushInterval:    20 * time.Millisecond,
		DebounceInterval: 10 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[test] ", 0),
	}
}

func TestNew(t *testing.T) {
	eng := setupEngine(t, &recordingAdapter{})
	watchDir := t.TempDir()

	tests := []struct {
		name    string
		engine  *engine.Engine
		dir     string
		wantErr bool
	}{
		{name: "valid configuration", engine: eng, dir: watchDir},
		{name: "nil engine", engine: nil, dir: watchDir, wantErr: true},
		{name: "empty watch dir", engine: eng, dir: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.engine, tt.dir, testConfig())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if d != nil {
				_ = d.Stop()
			}
		})
	}
}

func TestDaemonEnqueuesFileChanges(t *testing.T) {
	adapter := &recordingAdapter{}
	eng := setupEngine(t, adapter)
	watchDir := t.TempDir()

	d, err := New(eng, watchDir, testConfig())
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	// Give the watcher a moment to attach, then create a file.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(watchDir, "note.md"), []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	// Wait for debounce + flush to deliver the item.
	deadline := time.Now().Add(2 * time.Second)
	for adapter.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("daemon exited with error: %v", err)
	}

	if adapter.count() == 0 {
		t.Fatal("expected the file change to be enqueued and flushed")
	}

	adapter.mu.Lock()
	item := adapter.seen[0]
	adapter.mu.Unlock()

	if item.Path != "/note.md" {
		t.Errorf("expected logical path /note.md, got %s", item.Path)
	}
	if item.Action != queue.ActionCreate {
		t.Errorf("expected create action, got %s", item.Action)
	}
	if item.Content == nil || *item.Content != "hello" {
		t.Errorf("expected file content captured, got %v", item.Content)
	}
}

func TestDaemonIgnoresHiddenAndTempFiles(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/project/.nova", true},
		{"/project/.git", true},
		{"/project/notes.md.tmp", true},
		{"/project/notes.md~", true},
		{"/project/notes.md", false},
		{"/project/sub/readme.txt", false},
	}

	for _, tt := range tests {
		if got := ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDaemonEnqueueHook(t *testing.T) {
	adapter := &recordingAdapter{}
	eng := setupEngine(t, adapter)
	watchDir := t.TempDir()

	var hookMu sync.Mutex
	var enqueued []queue.Item

	config := testConfig()
	config.OnEnqueue = func(item queue.Item) {
		hookMu.Lock()
		enqueued = append(enqueued, item)
		hookMu.Unlock()
	}

	d, err := New(eng, watchDir, config)
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(watchDir, "note.md"), []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		hookMu.Lock()
		n := len(enqueued)
		hookMu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("daemon exited with error: %v", err)
	}

	hookMu.Lock()
	defer hookMu.Unlock()
	if len(enqueued) == 0 {
		t.Fatal("expected OnEnqueue hook to be called")
	}
	if enqueued[0].Path != "/note.md" || enqueued[0].ID == "" {
		t.Errorf("expected hook to receive the stored item, got %+v", enqueued[0])
	}
}

func TestDaemonFlushHook(t *testing.T) {
	adapter := &recordingAdapter{}
	eng := setupEngine(t, adapter)

	if _, err := eng.Enqueue(queue.Item{Action: queue.ActionDelete, Path: "/gone.md"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	var hookMu sync.Mutex
	var results []*queue.FlushResult

	config := testConfig()
	config.OnFlush = func(result *queue.FlushResult) {
		hookMu.Lock()
		results = append(results, result)
		hookMu.Unlock()
	}

	d, err := New(eng, t.TempDir(), config)
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for adapter.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("daemon exited with error: %v", err)
	}

	hookMu.Lock()
	defer hookMu.Unlock()
	if len(results) == 0 {
		t.Fatal("expected OnFlush hook to be called")
	}

	found := false
	for _, r := range results {
		if r.Processed == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a flush result with processed=1, got %+v", results)
	}
}
