package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/repository"
)

// releaseScript deletes the lock only when still held by the releasing
// owner, so an expired-and-reacquired lock is never removed by a stale
// holder.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

type taskLocker struct {
	client   *redislib.Client
	prefix   string
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

// NewTaskLocker creates a Redis-backed per-task mutex. The TTL bounds how
// long a crashed holder can block a task.
func NewTaskLocker(client *redislib.Client, ttl time.Duration) repository.TaskLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &taskLocker{
		client:   client,
		prefix:   "task_lock:",
		ttl:      ttl,
		attempts: 10,
		backoff:  25 * time.Millisecond,
	}
}

func (l *taskLocker) Lock(ctx context.Context, taskID string) (repository.UnlockFunc, error) {
	key := l.key(taskID)
	owner := uuid.NewString()

	for attempt := 0; attempt < l.attempts; attempt++ {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, domain.StorageError("acquire task lock", err)
		}
		if ok {
			return func(ctx context.Context) error {
				if err := l.client.Eval(ctx, releaseScript, []string{key}, owner).Err(); err != nil {
					return domain.StorageError("release task lock", err)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, domain.WrapError(domain.ErrCodeConflict, "task lock wait cancelled", ctx.Err())
		case <-time.After(l.backoff):
		}
	}
	return nil, domain.ErrTaskLocked
}

func (l *taskLocker) key(taskID string) string {
	return fmt.Sprintf("%s%s", l.prefix, taskID)
}
