package resolve

import "github.com/nova-editor/novasync/internal/queue"

// StrategyLastWriteWins is the name of the last-write-wins strategy.
const StrategyLastWriteWins = "last-write-wins"

// StrategyMerge is the name of the merge strategy.
const StrategyMerge = "merge"

func init() {
	Register(lastWriteWins{})
	Register(merge{})
}

// lastWriteWins schedules the item for retry with no content change.
//
// The resolver's role here is purely scheduling: the remote adapter
// performs the timestamp comparison when the item is flushed again.
type lastWriteWins struct{}

func (lastWriteWins) Name() string { return StrategyLastWriteWins }

func (lastWriteWins) Apply(item *queue.Item, res queue.Resolution) error {
	item.Synced = false
	return nil
}

// merge overwrites the item's content with caller-computed merged content
// (e.g. from a three-way merge UI) and schedules a retry.
type merge struct{}

func (merge) Name() string { return StrategyMerge }

func (merge) Apply(item *queue.Item, res queue.Resolution) error {
	if res.ResolvedContent == nil {
		return ErrMissingMergeContent
	}
	content := *res.ResolvedContent
	item.Content = &content
	item.Synced = false
	return nil
}
