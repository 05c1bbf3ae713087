// Command novasync manages the offline sync queue for Nova projects.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nova-editor/novasync/internal/config"
	"github.com/nova-editor/novasync/internal/engine"
	"github.com/nova-editor/novasync/internal/store"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "novasync",
	Short: "Offline-first sync queue for Nova projects",
	Long: `novasync buffers local edits made while disconnected, reconciles them
against the remote authority, and exposes conflict resolution when local
and remote state diverge.

The queue lives under the project's .nova directory and survives restarts.
Run 'novasync daemon' to watch the project and flush continuously, or use
'enqueue' and 'flush' for one-shot operation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir,
		"application data directory")
}

// loadConfig reads configuration for the selected data directory.
func loadConfig() (*config.Config, error) {
	return config.Load(dataDir)
}

// openEngine builds an engine from config. The returned cleanup closes
// the store and must be called before exit.
func openEngine(logger *log.Logger) (*engine.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := cfg.OpenStore()
	if err != nil {
		return nil, nil, err
	}

	// The loopback adapter stands in until a real transport is configured.
	eng, err := engine.New(st, engine.Loopback{}, logger)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	return eng, func() { closeStore(st) }, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
