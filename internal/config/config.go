// Package config loads novasync configuration from file and environment.
//
// Configuration is read from <data_dir>/config.yaml when present, with
// NOVASYNC_* environment variables taking precedence. Every setting has a
// default, so running with no config file at all is fully supported.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nova-editor/novasync/internal/store"
)

// DefaultDataDir is the application's private data directory.
const DefaultDataDir = ".nova"

// Config holds the full novasync configuration.
type Config struct {
	// DataDir is the application data directory holding the queue
	// snapshot, config file, and daemon log.
	DataDir string `mapstructure:"data_dir"`

	Store     StoreConfig     `mapstructure:"store"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// StoreConfig selects and locates the queue store backend.
type StoreConfig struct {
	// Backend is the store backend name: "file" or "sqlite".
	Backend string `mapstructure:"backend"`

	// Path overrides the snapshot location. Empty uses the backend's
	// default path under DataDir.
	Path string `mapstructure:"path"`
}

// SyncConfig tunes the background daemon.
type SyncConfig struct {
	FlushInterval    time.Duration `mapstructure:"flush_interval"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval"`
}

// DashboardConfig configures the WebSocket event feed.
type DashboardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration rooted at the given data directory.
// An empty dataDir uses DefaultDataDir.
func Load(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	v := viper.New()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("store.backend", string(store.BackendFile))
	v.SetDefault("store.path", "")
	v.SetDefault("sync.flush_interval", 5*time.Second)
	v.SetDefault("sync.debounce_interval", 200*time.Millisecond)
	v.SetDefault("dashboard.enabled", false)
	v.SetDefault("dashboard.addr", "127.0.0.1:7421")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)

	v.SetEnvPrefix("NOVASYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	switch store.Backend(c.Store.Backend) {
	case store.BackendFile, store.BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want file or sqlite)", c.Store.Backend)
	}
	if c.Sync.FlushInterval <= 0 {
		return fmt.Errorf("sync.flush_interval must be positive")
	}
	if c.Sync.DebounceInterval <= 0 {
		return fmt.Errorf("sync.debounce_interval must be positive")
	}
	return nil
}

// QueuePath returns the effective queue snapshot path.
func (c *Config) QueuePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if store.Backend(c.Store.Backend) == store.BackendSQLite {
		return filepath.Join(c.DataDir, "sync-queue.db")
	}
	return filepath.Join(c.DataDir, "sync-queue.json")
}

// LogPath returns the daemon log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "novasync.log")
}

// OpenStore opens the configured store backend at the effective path.
func (c *Config) OpenStore() (store.Store, error) {
	return store.Open(store.Backend(c.Store.Backend), c.QueuePath())
}
