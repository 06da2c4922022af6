package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/repository"
)

const scheduleColumns = `id, task_id, effective_from, effective_to, kind, weekday_mask, monthday, interval_days`

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository returns a Postgres-backed implementation of ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) repository.ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Schedule, error) {
	const query = `
	SELECT ` + scheduleColumns + `
	FROM task_schedule
	WHERE task_id = $1
	ORDER BY effective_from DESC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, domain.StorageError("list schedules", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func (r *scheduleRepository) Current(ctx context.Context, taskID string) (*domain.Schedule, error) {
	const query = `
	SELECT ` + scheduleColumns + `
	FROM task_schedule
	WHERE task_id = $1 AND effective_to IS NULL
	`
	row := r.pool.QueryRow(ctx, query, taskID)
	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, domain.StorageError("load current schedule", err)
	}
	return schedule, nil
}

func (r *scheduleRepository) ListEffectiveInRange(ctx context.Context, from, to int64) ([]domain.Schedule, error) {
	const query = `
	SELECT ` + scheduleColumns + `
	FROM task_schedule
	WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $2)
	ORDER BY task_id, effective_from DESC
	`
	rows, err := r.pool.Query(ctx, query, to, from)
	if err != nil {
		return nil, domain.StorageError("list schedules in range", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func (r *scheduleRepository) ListAll(ctx context.Context) ([]domain.Schedule, error) {
	const query = `
	SELECT ` + scheduleColumns + `
	FROM task_schedule
	ORDER BY task_id, effective_from DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.StorageError("list schedules", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	if schedule == nil {
		return domain.ErrInvalidPayload
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if _, err := r.pool.Exec(ctx, insertScheduleQuery, insertScheduleArgs(schedule)...); err != nil {
		return domain.StorageError("create schedule", err)
	}
	return nil
}

func (r *scheduleRepository) Transition(ctx context.Context, taskID string, closeAt int64, next *domain.Schedule) error {
	if next == nil {
		return domain.ErrInvalidPayload
	}
	if next.ID == "" {
		next.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.StorageError("begin schedule transition", err)
	}
	defer tx.Rollback(ctx)

	const closeQuery = `
	UPDATE task_schedule SET effective_to = $2
	WHERE task_id = $1 AND effective_to IS NULL
	`
	tag, err := tx.Exec(ctx, closeQuery, taskID, closeAt)
	if err != nil {
		return domain.StorageError("close schedule window", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}

	if _, err := tx.Exec(ctx, insertScheduleQuery, insertScheduleArgs(next)...); err != nil {
		return domain.StorageError("open schedule window", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StorageError("commit schedule transition", err)
	}
	return nil
}

const insertScheduleQuery = `
INSERT INTO task_schedule (id, task_id, effective_from, effective_to, kind, weekday_mask, monthday, interval_days)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func insertScheduleArgs(s *domain.Schedule) []interface{} {
	return []interface{}{
		s.ID,
		s.TaskID,
		s.EffectiveFrom,
		s.EffectiveTo,
		string(s.Kind),
		nullInt(s.WeekdayMask),
		nullInt(s.Monthday),
		nullInt(s.IntervalDays),
	}
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, domain.StorageError("scan schedule", err)
		}
		schedules = append(schedules, *schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("read schedules", err)
	}
	return schedules, nil
}

func scanSchedule(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Schedule, error) {
	var (
		schedule domain.Schedule
		kind     string
		mask     *int
		monthday *int
		interval *int
	)

	if err := row.Scan(
		&schedule.ID,
		&schedule.TaskID,
		&schedule.EffectiveFrom,
		&schedule.EffectiveTo,
		&kind,
		&mask,
		&monthday,
		&interval,
	); err != nil {
		return nil, err
	}

	schedule.Kind = domain.ScheduleKind(kind)
	schedule.WeekdayMask = derefInt(mask)
	schedule.Monthday = derefInt(monthday)
	schedule.IntervalDays = derefInt(interval)
	return &schedule, nil
}
