// Package daemon provides the background sync daemon that watches a
// project directory and drains the offline queue.
//
// The daemon:
//  1. Watches for file changes in the project directory
//  2. Translates changes into queue mutations (create/update/delete)
//  3. Periodically flushes the queue to the remote adapter
//  4. Handles graceful shutdown
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nova-editor/novasync/internal/engine"
	"github.com/nova-editor/novasync/internal/queue"
)

// Config holds configuration for the daemon.
type Config struct {
	// FlushInterval is how often the queue is flushed to the remote.
	FlushInterval time.Duration

	// DebounceInterval is how long to wait before processing file changes.
	// This batches rapid editor save/rename sequences together.
	DebounceInterval time.Duration

	// OnEnqueue, if set, is called after every item the watcher enqueues.
	// Used to feed the dashboard broadcast.
	OnEnqueue func(item queue.Item)

	// OnFlush, if set, is called after every completed flush with its
	// result. Used to feed the dashboard broadcast.
	OnFlush func(result *queue.FlushResult)

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FlushInterval:    5 * time.Second,
		DebounceInterval: 200 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// pendingChange is a debounced file event awaiting processing.
type pendingChange struct {
	op       fsnotify.Op
	queuedAt time.Time
}

// Daemon orchestrates file watching and queue flushing.
type Daemon struct {
	engine   *engine.Engine
	watchDir string
	config   *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]pendingChange // absolute path -> event
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon watching watchDir and draining the given engine.
//
// Use Start() to begin watching and flushing.
func New(eng *engine.Engine, watchDir string, config *Config) (*Daemon, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if watchDir == "" {
		return nil, fmt.Errorf("watchDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		engine:      eng,
		watchDir:    watchDir,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]pendingChange),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// This blocks until ctx is cancelled or Stop is called. A flush already
// in flight finishes its current item before the daemon shuts down.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if err := d.watcher.Add(d.watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.watchDir, err)
	}
	d.config.Logger.Printf("Watching: %s", d.watchDir)

	d.wg.Add(3)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.flushLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			// Only care about Create, Write, Remove, Rename
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if ignored(event.Name) {
				continue
			}

			d.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name, event.Op)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// ignored reports whether a path should not produce queue mutations.
// Hidden files and directories (including .nova itself) and editor temp
// files are skipped.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, "~") {
		return true
	}
	return false
}

// queueChange adds a file event to the change queue with debouncing.
// A removal supersedes any earlier create/write for the same path.
func (d *Daemon) queueChange(path string, op fsnotify.Op) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	prev, exists := d.changeQueue[path]
	if exists && prev.op&fsnotify.Create != 0 && op&fsnotify.Write != 0 {
		// Create followed by write is still a create.
		op = fsnotify.Create
	}
	d.changeQueue[path] = pendingChange{op: op, queuedAt: time.Now()}
}

// processChangeQueue drains debounced file changes into the engine.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

// processPendingChanges enqueues changes that have settled for at least
// one debounce interval.
func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	for path, change := range d.changeQueue {
		if now.Sub(change.queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.changeQueue, path)

		if err := d.enqueueChange(path, change.op); err != nil {
			d.config.Logger.Printf("Error enqueuing change for %s: %v", path, err)
		}
	}
}

// enqueueChange translates one settled file event into a queue mutation.
func (d *Daemon) enqueueChange(path string, op fsnotify.Op) error {
	logicalPath, err := d.logicalPath(path)
	if err != nil {
		return err
	}

	// The file may have been removed after the event fired; trust the
	// filesystem over the event kind.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d.enqueue(queue.Item{
			Action: queue.ActionDelete,
			Path:   logicalPath,
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read changed file: %w", err)
	}
	content := string(data)

	action := queue.ActionUpdate
	if op&fsnotify.Create != 0 {
		action = queue.ActionCreate
	}

	return d.enqueue(queue.Item{
		Action:  action,
		Path:    logicalPath,
		Content: &content,
	})
}

// enqueue hands one mutation to the engine and fires the OnEnqueue hook.
func (d *Daemon) enqueue(item queue.Item) error {
	stored, err := d.engine.Enqueue(item)
	if err != nil {
		return err
	}
	if d.config.OnEnqueue != nil {
		d.config.OnEnqueue(stored)
	}
	return nil
}

// logicalPath converts an absolute watched path into the queue's logical
// resource identifier, rooted at the watch directory.
func (d *Daemon) logicalPath(path string) (string, error) {
	rel, err := filepath.Rel(d.watchDir, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	return "/" + filepath.ToSlash(rel), nil
}

// flushLoop periodically flushes the queue to the remote adapter.
func (d *Daemon) flushLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.flushOnce()
		}
	}
}

// flushOnce runs one flush cycle and reports the result.
func (d *Daemon) flushOnce() {
	result, err := d.engine.Flush(d.ctx)
	if err != nil {
		if errors.Is(err, engine.ErrFlushInProgress) || errors.Is(err, context.Canceled) {
			return
		}
		d.config.Logger.Printf("Flush error: %v", err)
		return
	}

	if result.Processed > 0 || result.Failed > 0 || len(result.Conflicts) > 0 {
		d.config.Logger.Printf("Flush: processed=%d failed=%d conflicts=%v",
			result.Processed, result.Failed, result.Conflicts)
	}

	if d.config.OnFlush != nil {
		d.config.OnFlush(result)
	}
}
