package habit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/pkg/dayindex"
	"github.com/habitkit/backend/pkg/logger"
	"github.com/habitkit/backend/repository"
	"github.com/habitkit/backend/usecase"
)

// Journal operation names.
const (
	OperationCreate  = "create"
	OperationUpdate  = "update"
	OperationArchive = "archive"
	OperationDelete  = "delete"
)

// ScheduleParams carries the recurrence fields of add/edit requests.
type ScheduleParams struct {
	Frequency    string
	WeekdayMask  int
	Monthday     int
	IntervalDays int
}

// UseCase implements the recurrence and streak engine over the storage
// collaborators. All mutations run under the per-task lock; reads are
// lock-free and recompute derived stats from source tables on every call.
type UseCase struct {
	tasks       repository.TaskRepository
	schedules   repository.ScheduleRepository
	completions repository.CompletionRepository
	locker      repository.TaskLocker
	journal     usecase.MutationJournal
	logger      *zap.Logger

	today func() int64
}

func New(
	tasks repository.TaskRepository,
	schedules repository.ScheduleRepository,
	completions repository.CompletionRepository,
	locker repository.TaskLocker,
	journal usecase.MutationJournal,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:       tasks,
		schedules:   schedules,
		completions: completions,
		locker:      locker,
		journal:     journal,
		logger:      logger,
		today:       dayindex.Today,
	}
}

// TodayIndex exposes the engine's notion of "today" to the transport layer.
func (uc *UseCase) TodayIndex() int64 {
	return uc.today()
}

// AddTask creates a task together with its initial schedule window,
// effective from today. Validation happens before any write.
func (uc *UseCase) AddTask(ctx context.Context, title, notes string, params ScheduleParams) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	schedule := scheduleFromParams(params, uc.today())
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	task, err := uc.tasks.Create(ctx, &domain.Task{Title: title, Notes: notes})
	if err != nil {
		return nil, err
	}

	schedule.TaskID = task.ID
	if err := uc.schedules.Create(ctx, schedule); err != nil {
		// Roll the orphaned task back so a half-created habit never
		// shows up in listings.
		if delErr := uc.tasks.Delete(ctx, task.ID); delErr != nil {
			uc.logger.Error("failed to remove task after schedule create error",
				zap.String("task_id", task.ID), zap.Error(delErr))
		}
		return nil, err
	}

	uc.record(ctx, OperationCreate, task)
	return task, nil
}

// EditTask renames a task and, when the recurrence changed, closes the
// current schedule window at yesterday and opens the new rule from today.
// Historical completions and past due-ness are untouched.
func (uc *UseCase) EditTask(ctx context.Context, taskID, title, notes string, params ScheduleParams) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrEmptyTitle
	}

	today := uc.today()
	next := scheduleFromParams(params, today)
	if err := next.Validate(); err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, taskID)
	if err != nil {
		return err
	}
	defer uc.unlock(ctx, unlock)

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.IsArchived() {
		return domain.ErrTaskArchived
	}
	if err := uc.tasks.Rename(ctx, taskID, title, notes); err != nil {
		return err
	}
	task.Title, task.Notes = title, notes

	current, err := uc.schedules.Current(ctx, taskID)
	if err != nil {
		return err
	}
	if !current.SameRule(next) {
		next.TaskID = taskID
		if err := uc.schedules.Transition(ctx, taskID, today-1, next); err != nil {
			return err
		}
	}

	uc.record(ctx, OperationUpdate, task)
	return nil
}

// ArchiveTask hides the task from listings and the month view while
// keeping its schedule history and completions intact.
func (uc *UseCase) ArchiveTask(ctx context.Context, taskID string) error {
	unlock, err := uc.lock(ctx, taskID)
	if err != nil {
		return err
	}
	defer uc.unlock(ctx, unlock)

	if err := uc.tasks.Archive(ctx, taskID); err != nil {
		return err
	}
	uc.record(ctx, OperationArchive, &domain.Task{ID: taskID})
	return nil
}

// DeleteTask irreversibly removes the task, its schedule history and its
// completions.
func (uc *UseCase) DeleteTask(ctx context.Context, taskID string) error {
	unlock, err := uc.lock(ctx, taskID)
	if err != nil {
		return err
	}
	defer uc.unlock(ctx, unlock)

	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	uc.record(ctx, OperationDelete, &domain.Task{ID: taskID})
	return nil
}

// DeleteAllTasks wipes every task with its schedules and completions.
func (uc *UseCase) DeleteAllTasks(ctx context.Context) error {
	if err := uc.tasks.DeleteAll(ctx); err != nil {
		return err
	}
	uc.record(ctx, OperationDelete, nil)
	return nil
}

// ToggleCompletion flips the completion fact for (task, day). The
// read-modify-write runs under the per-task lock; the store itself does
// not validate due-ness.
func (uc *UseCase) ToggleCompletion(ctx context.Context, taskID string, day int64) error {
	unlock, err := uc.lock(ctx, taskID)
	if err != nil {
		return err
	}
	defer uc.unlock(ctx, unlock)

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.IsArchived() {
		return domain.ErrTaskArchived
	}

	done, err := uc.completions.IsCompleted(ctx, taskID, day)
	if err != nil {
		return err
	}
	if err := uc.completions.Set(ctx, taskID, day, !done); err != nil {
		return err
	}

	if uc.journal != nil {
		if err := uc.journal.RecordCompletion(ctx, taskID, day, !done); err != nil {
			logger.WithRequestID(ctx, uc.logger).Warn("failed to journal completion toggle",
				zap.String("task_id", taskID), zap.Int64("day", day), zap.Error(err))
		}
	}
	return nil
}

// ListTasks returns every active task with its effective schedule and
// derived stats for the given day (today when nil).
func (uc *UseCase) ListTasks(ctx context.Context, day *int64) ([]domain.TaskWithStats, error) {
	target := uc.today()
	if day != nil {
		target = *day
	}

	tasks, err := uc.tasks.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TaskWithStats, 0, len(tasks))
	for _, task := range tasks {
		versions, err := uc.schedules.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		done, err := uc.completions.DaysByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}

		effective := domain.EffectiveSchedule(versions, target)
		if effective == nil && len(versions) > 0 {
			// Task had no schedule yet on the target day; report the
			// newest version so the caller still sees the rule.
			effective = &versions[0]
		}

		stats := domain.TaskWithStats{
			Task:          task,
			CurrentStreak: currentStreak(versions, done, target),
			BestStreak:    bestStreak(versions, done, target),
			DueToday:      effective.IsDue(target),
			DoneToday:     done[target],
		}
		if effective != nil {
			stats.Schedule = *effective
		}
		out = append(out, stats)
	}
	return out, nil
}

// MonthView materializes the calendar grid for (year, month).
func (uc *UseCase) MonthView(ctx context.Context, year int, month time.Month) ([]domain.MonthViewDay, error) {
	grid := dayindex.MonthGrid(year, month)
	from, to := grid[0], grid[len(grid)-1]

	tasks, err := uc.tasks.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	schedules, err := uc.schedules.ListEffectiveInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	completions, err := uc.completions.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return buildMonthView(grid, tasks, schedules, completions), nil
}

// WeeklyStreak returns the aggregate count of consecutive perfect weeks.
func (uc *UseCase) WeeklyStreak(ctx context.Context) (int, error) {
	schedules, err := uc.schedules.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(schedules) == 0 {
		return 0, nil
	}

	today := uc.today()
	earliest, _ := earliestFrom(schedules)
	completions, err := uc.completions.ListRange(ctx, earliest, dayindex.WeekStart(today)+6)
	if err != nil {
		return 0, err
	}

	return weeklyStreak(schedules, completions, today), nil
}

func scheduleFromParams(params ScheduleParams, from int64) *domain.Schedule {
	return &domain.Schedule{
		EffectiveFrom: from,
		Kind:          domain.ScheduleKind(params.Frequency),
		WeekdayMask:   params.WeekdayMask,
		Monthday:      params.Monthday,
		IntervalDays:  params.IntervalDays,
	}
}

func (uc *UseCase) lock(ctx context.Context, taskID string) (repository.UnlockFunc, error) {
	if uc.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	return uc.locker.Lock(ctx, taskID)
}

func (uc *UseCase) unlock(ctx context.Context, unlock repository.UnlockFunc) {
	if err := unlock(ctx); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("failed to release task lock", zap.Error(err))
	}
}

func (uc *UseCase) record(ctx context.Context, operation string, task *domain.Task) {
	if uc.journal == nil {
		return
	}
	if err := uc.journal.RecordTask(ctx, operation, task); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("failed to journal task mutation",
			zap.String("operation", operation), zap.Error(err))
	}
}
