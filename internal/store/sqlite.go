package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nova-editor/novasync/internal/queue"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func init() {
	Register(BackendSQLite, func(path string) (Store, error) {
		return OpenSQLite(path)
	})
}

// SQLiteStore persists the queue in an embedded SQLite database.
//
// The database is opened in WAL mode. Each Save replaces the whole
// snapshot inside one transaction, preserving the all-or-nothing
// contract of the Store interface.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite creates or opens a SQLite-backed store at the given path.
//
// The caller MUST call Close() when done to ensure the WAL is
// checkpointed and the connection released.
func OpenSQLite(path string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLiteStore{conn: conn, path: path}

	// WAL for concurrent readers during writes
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// initSchema creates the queue table if it doesn't exist. Idempotent.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_queue (
		position  INTEGER PRIMARY KEY,
		id        TEXT NOT NULL,
		action    TEXT NOT NULL,
		path      TEXT NOT NULL,
		content   TEXT,
		timestamp INTEGER NOT NULL,
		synced    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_sync_queue_synced ON sync_queue(synced);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Load implements Store.Load.
func (s *SQLiteStore) Load() ([]queue.Item, error) {
	rows, err := s.conn.Query(`
		SELECT id, action, path, content, timestamp, synced
		FROM sync_queue ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	items := []queue.Item{}
	for rows.Next() {
		var item queue.Item
		var content sql.NullString
		if err := rows.Scan(&item.ID, &item.Action, &item.Path, &content, &item.Timestamp, &item.Synced); err != nil {
			return nil, fmt.Errorf("failed to scan queue row: %w", err)
		}
		if content.Valid {
			item.Content = &content.String
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: item %s: %v", ErrCorruptData, s.path, item.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queue rows: %w", err)
	}

	return items, nil
}

// Save implements Store.Save.
func (s *SQLiteStore) Save(items []queue.Item) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM sync_queue"); err != nil {
		return fmt.Errorf("failed to clear queue table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sync_queue (position, id, action, path, content, timestamp, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos, item := range items {
		var content any
		if item.Content != nil {
			content = *item.Content
		}
		if _, err := stmt.Exec(pos, item.ID, string(item.Action), item.Path, content, item.Timestamp, item.Synced); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit queue snapshot: %w", err)
	}
	return nil
}

// Path implements Store.Path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close implements Store.Close.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}
