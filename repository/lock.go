package repository

import "context"

// UnlockFunc releases a previously acquired task lock.
type UnlockFunc func(ctx context.Context) error

// TaskLocker serializes mutations per task. Toggling a completion is a
// read-modify-write: two concurrent toggles on the same (task, day) could
// both read "not done" and both write "done", so every mutating operation
// runs under this lock.
type TaskLocker interface {
	Lock(ctx context.Context, taskID string) (UnlockFunc, error)
}
