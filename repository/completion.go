package repository

import "context"

// CompletionKey identifies a completion fact. A missing key means "not
// completed"; there is no tri-state.
type CompletionKey struct {
	TaskID string
	Day    int64
}

type CompletionRepository interface {
	IsCompleted(ctx context.Context, taskID string, day int64) (bool, error)
	// Set upserts the completion fact. Setting the same value twice is
	// observably a no-op. The store does not validate due-ness.
	Set(ctx context.Context, taskID string, day int64, done bool) error
	// DaysByTask returns the set of completed days for one task.
	DaysByTask(ctx context.Context, taskID string) (map[int64]bool, error)
	// ListRange returns the completion set for all tasks in [from, to].
	ListRange(ctx context.Context, from, to int64) (map[CompletionKey]bool, error)
}
