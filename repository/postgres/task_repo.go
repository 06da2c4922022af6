package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT id, title, notes, is_active, created_at, archived_at
	FROM task
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListActive(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT id, title, notes, is_active, created_at, archived_at
	FROM task
	WHERE archived_at IS NULL
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.StorageError("list tasks", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.IsActive = true

	const query = `
	INSERT INTO task (id, title, notes, is_active)
	VALUES ($1, $2, $3, TRUE)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, task.ID, task.Title, task.Notes).Scan(&task.CreatedAt); err != nil {
		return nil, domain.StorageError("create task", err)
	}
	return task, nil
}

func (r *taskRepository) Rename(ctx context.Context, id, title, notes string) error {
	const query = `UPDATE task SET title = $2, notes = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, title, notes)
	if err != nil {
		return domain.StorageError("rename task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Archive(ctx context.Context, id string) error {
	const query = `
	UPDATE task SET is_active = FALSE, archived_at = NOW()
	WHERE id = $1 AND archived_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.StorageError("archive task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	// Schedules and completions go with the task via ON DELETE CASCADE.
	const query = `DELETE FROM task WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.StorageError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM task`); err != nil {
		return domain.StorageError("delete all tasks", err)
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var archived *time.Time

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Notes,
		&task.IsActive,
		&task.CreatedAt,
		&archived,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, domain.StorageError("scan task", err)
	}

	task.ArchivedAt = archived
	return &task, nil
}
