package usecase

import (
	"context"

	"github.com/habitkit/backend/domain"
)

// MutationJournal abstracts the local mutation journal so use cases stay
// storage-agnostic. Recording is best-effort and never fails the mutation
// it describes.
type MutationJournal interface {
	RecordTask(ctx context.Context, operation string, task *domain.Task) error
	RecordCompletion(ctx context.Context, taskID string, day int64, done bool) error
}
