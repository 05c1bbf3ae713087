package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nova-editor/novasync/internal/queue"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <action> <path>",
	Short: "Add a mutation to the sync queue",
	Long: `Add a local mutation to the sync queue.

The action must be create, update, or delete. Content is read from the
--content flag for create/update; delete items carry no content.

Examples:
  novasync enqueue create /notes/today.md --content "# Today"
  novasync enqueue delete /notes/old.md`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		action, path := args[0], args[1]
		content, _ := cmd.Flags().GetString("content")

		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		item := queue.Item{Action: queue.Action(action), Path: path}
		if cmd.Flags().Changed("content") {
			item.Content = &content
		}

		stored, err := eng.Enqueue(item)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Enqueued %s %s (%s)\n", stored.Action, stored.Path, stored.ID)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List unsynced queue items",
	Run: func(cmd *cobra.Command, args []string) {
		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		pending := eng.Pending()
		if len(pending) == 0 {
			fmt.Println("Queue is empty")
			return
		}

		for _, item := range pending {
			fmt.Printf("%-36s  %-6s  %s\n", item.ID, item.Action, item.Path)
		}
		fmt.Printf("\n%d pending item(s)\n", len(pending))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue statistics",
	Run: func(cmd *cobra.Command, args []string) {
		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		stats := eng.Stats()
		fmt.Printf("Total:   %d\n", stats.Total)
		fmt.Printf("Pending: %d\n", stats.Pending)
		fmt.Printf("Synced:  %d\n", stats.Synced)

		if len(stats.ByAction) > 0 {
			actions := make([]string, 0, len(stats.ByAction))
			for action := range stats.ByAction {
				actions = append(actions, action)
			}
			sort.Strings(actions)

			fmt.Println("By action:")
			for _, action := range actions {
				fmt.Printf("  %-7s %d\n", action, stats.ByAction[action])
			}
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all queued items",
	Long: `Discard every queued item, pending and synced, and persist the empty
queue. This is a hard reset for use after a full remote re-sync.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Fprintln(os.Stderr, "Refusing to clear the queue without --force")
			os.Exit(1)
		}

		eng, cleanup, err := openEngine(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		if err := eng.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Queue cleared")
	},
}

func init() {
	enqueueCmd.Flags().String("content", "", "item payload for create/update")
	clearCmd.Flags().Bool("force", false, "confirm discarding all queued items")

	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}
