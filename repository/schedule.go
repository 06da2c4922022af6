package repository

import (
	"context"

	"github.com/habitkit/backend/domain"
)

type ScheduleRepository interface {
	// ListByTask returns every schedule version of a task, newest window
	// first, so domain.EffectiveSchedule finds the covering version fast.
	ListByTask(ctx context.Context, taskID string) ([]domain.Schedule, error)
	// Current returns the open-ended version (effective_to IS NULL).
	Current(ctx context.Context, taskID string) (*domain.Schedule, error)
	// ListEffectiveInRange returns all versions, across all tasks, whose
	// window intersects [from, to].
	ListEffectiveInRange(ctx context.Context, from, to int64) ([]domain.Schedule, error)
	ListAll(ctx context.Context) ([]domain.Schedule, error)
	Create(ctx context.Context, schedule *domain.Schedule) error
	// Transition atomically closes the current window at closeAt and opens
	// next. A task must never be left with a gap or an overlap, so both
	// writes happen in one transaction.
	Transition(ctx context.Context, taskID string, closeAt int64, next *domain.Schedule) error
}
