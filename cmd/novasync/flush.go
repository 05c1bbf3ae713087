package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Push pending items to the remote",
	Long: `Push every pending item to the remote adapter in enqueue order.

Items the remote accepts are marked synced and pruned from the queue.
Conflicted and failed items stay pending for a later flush or an
explicit resolve.`,
	Run: func(cmd *cobra.Command, args []string) {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result, err := eng.Flush(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Processed: %d\n", result.Processed)
		fmt.Printf("Failed:    %d\n", result.Failed)
		if len(result.Conflicts) > 0 {
			fmt.Printf("Conflicts: %d\n", len(result.Conflicts))
			for _, id := range result.Conflicts {
				fmt.Printf("  %s\n", id)
			}
			fmt.Println("\nRun 'novasync resolve <item-id>' to resolve conflicts")
		}
	},
}

func init() {
	flushCmd.Flags().Duration("timeout", 30*time.Second, "abort the flush after this long")
	rootCmd.AddCommand(flushCmd)
}
