package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nova-editor/novasync/internal/queue"
	"github.com/nova-editor/novasync/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <item-id>",
	Short: "Resolve a conflicted queue item",
	Long: `Resolve a conflicted queue item with a named strategy.

last-write-wins keeps the local content and schedules the item for
retry. merge replaces the item content with --content and schedules it
for retry.

Examples:
  novasync resolve 4f1c... --strategy last-write-wins
  novasync resolve 4f1c... --strategy merge --content "merged text"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		strategy, _ := cmd.Flags().GetString("strategy")
		content, _ := cmd.Flags().GetString("content")

		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		res := queue.Resolution{Strategy: strategy}
		if cmd.Flags().Changed("content") {
			res.ResolvedContent = &content
		}

		if err := eng.ResolveConflict(args[0], res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, resolve.ErrUnknownStrategy) {
				fmt.Fprintf(os.Stderr, "Known strategies: %s\n", strings.Join(resolve.Strategies(), ", "))
			}
			os.Exit(1)
		}

		fmt.Printf("Resolved %s with %s; item is pending again\n", args[0], strategy)
	},
}

func init() {
	resolveCmd.Flags().String("strategy", resolve.StrategyLastWriteWins, "resolution strategy")
	resolveCmd.Flags().String("content", "", "resolved payload for the merge strategy")
	rootCmd.AddCommand(resolveCmd)
}
