package domain

import "time"

// Task represents a recurring habit owned by the user.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

func (t *Task) IsArchived() bool {
	return t != nil && t.ArchivedAt != nil
}
