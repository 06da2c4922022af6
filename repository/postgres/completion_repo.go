package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/repository"
)

type completionRepository struct {
	pool *pgxpool.Pool
}

// NewCompletionRepository returns a Postgres-backed implementation of
// CompletionRepository. Only completed days are stored: a missing
// (task, day) row means "not completed".
func NewCompletionRepository(pool *pgxpool.Pool) repository.CompletionRepository {
	return &completionRepository{pool: pool}
}

func (r *completionRepository) IsCompleted(ctx context.Context, taskID string, day int64) (bool, error) {
	const query = `
	SELECT EXISTS (SELECT 1 FROM task_completion WHERE task_id = $1 AND day = $2)
	`
	var done bool
	if err := r.pool.QueryRow(ctx, query, taskID, day).Scan(&done); err != nil {
		return false, domain.StorageError("read completion", err)
	}
	return done, nil
}

func (r *completionRepository) Set(ctx context.Context, taskID string, day int64, done bool) error {
	if done {
		const query = `
		INSERT INTO task_completion (task_id, day)
		VALUES ($1, $2)
		ON CONFLICT (task_id, day) DO NOTHING
		`
		if _, err := r.pool.Exec(ctx, query, taskID, day); err != nil {
			return domain.StorageError("set completion", err)
		}
		return nil
	}

	const query = `DELETE FROM task_completion WHERE task_id = $1 AND day = $2`
	if _, err := r.pool.Exec(ctx, query, taskID, day); err != nil {
		return domain.StorageError("clear completion", err)
	}
	return nil
}

func (r *completionRepository) DaysByTask(ctx context.Context, taskID string) (map[int64]bool, error) {
	const query = `SELECT day FROM task_completion WHERE task_id = $1`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, domain.StorageError("list completions", err)
	}
	defer rows.Close()

	days := make(map[int64]bool)
	for rows.Next() {
		var day int64
		if err := rows.Scan(&day); err != nil {
			return nil, domain.StorageError("scan completion", err)
		}
		days[day] = true
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("read completions", err)
	}
	return days, nil
}

func (r *completionRepository) ListRange(ctx context.Context, from, to int64) (map[repository.CompletionKey]bool, error) {
	const query = `SELECT task_id, day FROM task_completion WHERE day BETWEEN $1 AND $2`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, domain.StorageError("list completions in range", err)
	}
	defer rows.Close()

	completions := make(map[repository.CompletionKey]bool)
	for rows.Next() {
		var key repository.CompletionKey
		if err := rows.Scan(&key.TaskID, &key.Day); err != nil {
			return nil, domain.StorageError("scan completion", err)
		}
		completions[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("read completions", err)
	}
	return completions, nil
}
