package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nova-editor/novasync/internal/daemon"
	"github.com/nova-editor/novasync/internal/dashboard"
	"github.com/nova-editor/novasync/internal/engine"
	"github.com/nova-editor/novasync/internal/queue"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon [watch-dir]",
	Short: "Watch a directory and flush the queue continuously",
	Long: `Run the background sync daemon.

The daemon watches the given directory (default: current directory) for
file changes, enqueues them after a debounce window, and flushes the
queue to the remote on a fixed interval. Daemon logs rotate under the
data directory.

With dashboard.enabled set, a WebSocket endpoint broadcasts flush
results to connected clients.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		watchDir := "."
		if len(args) > 0 {
			watchDir = args[0]
		}
		foreground, _ := cmd.Flags().GetBool("foreground")

		if err := runDaemon(watchDir, foreground); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runDaemon(watchDir string, foreground bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if !foreground {
		out = &lumberjack.Logger{
			Filename:   cfg.LogPath(),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
	}
	logger := log.New(out, "[daemon] ", log.LstdFlags)

	st, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	eng, err := engine.New(st, engine.Loopback{}, logger)
	if err != nil {
		return err
	}

	dcfg := daemon.DefaultConfig()
	dcfg.FlushInterval = cfg.Sync.FlushInterval
	dcfg.DebounceInterval = cfg.Sync.DebounceInterval
	dcfg.Logger = logger

	var dash *dashboard.Server
	if cfg.Dashboard.Enabled {
		dash = dashboard.NewServer(cfg.Dashboard.Addr, logger)
		if err := dash.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}
		defer func() {
			if err := dash.Stop(); err != nil {
				logger.Printf("Error stopping dashboard: %v", err)
			}
		}()
		logger.Printf("Dashboard listening on %s", dash.Addr())

		dcfg.OnEnqueue = func(item queue.Item) {
			dash.Broadcast(dashboard.NewQueueUpdateMessage(item))
		}
		dcfg.OnFlush = func(result *queue.FlushResult) {
			dash.Broadcast(dashboard.NewFlushMessage(result))
			for _, id := range result.Conflicts {
				dash.Broadcast(dashboard.NewConflictMessage(id))
			}
			dash.Broadcast(dashboard.NewStatsMessage(eng.Stats()))
		}
	}

	d, err := daemon.New(eng, watchDir, dcfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down", sig)
		cancel()
	}()

	return d.Start(ctx)
}

func init() {
	daemonCmd.Flags().Bool("foreground", false, "log to stderr instead of the rotating log file")
	rootCmd.AddCommand(daemonCmd)
}
