package services

import (
	"context"
	"encoding/json"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/internal/infrastructure/journal"
	"github.com/habitkit/backend/usecase"
)

// JournalRecorder adapts the bolt journal store to the usecase port.
type JournalRecorder struct {
	store *journal.Store
}

func NewJournalRecorder(store *journal.Store) *JournalRecorder {
	return &JournalRecorder{store: store}
}

func (r *JournalRecorder) RecordTask(ctx context.Context, operation string, task *domain.Task) error {
	if r.store == nil {
		return nil
	}
	entry := journal.Entry{
		Entity:    journal.EntityTask,
		Operation: operation,
	}
	if task != nil {
		entry.TaskID = task.ID
		if payload, err := json.Marshal(task); err == nil {
			entry.Data = payload
		}
	}
	return r.store.Append(entry)
}

func (r *JournalRecorder) RecordCompletion(ctx context.Context, taskID string, day int64, done bool) error {
	if r.store == nil {
		return nil
	}
	return r.store.Append(journal.Entry{
		Entity:    journal.EntityCompletion,
		Operation: "toggle",
		TaskID:    taskID,
		Day:       &day,
		Done:      &done,
	})
}

var _ usecase.MutationJournal = (*JournalRecorder)(nil)
