package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask       = "task"
	EntityCompletion = "completion"
)

// Entry is one journaled mutation. The journal is an append-only local
// record of what changed and when; it is never replayed against primary
// storage.
type Entry struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Operation  string          `json:"operation"`
	TaskID     string          `json:"task_id,omitempty"`
	Day        *int64          `json:"day,omitempty"`
	Done       *bool           `json:"done,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
}
