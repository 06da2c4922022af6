package domain

// Derived projections. Never persisted: recomputed from
// Task+Schedule+Completion on every read.

// TaskWithStats is the list_tasks projection for a single task.
type TaskWithStats struct {
	Task          Task     `json:"task"`
	Schedule      Schedule `json:"schedule"`
	CurrentStreak int      `json:"current_streak"`
	BestStreak    int      `json:"best_streak"`
	DueToday      bool     `json:"due_today"`
	DoneToday     bool     `json:"done_today"`
}

// MonthTask is one due task inside a calendar cell.
type MonthTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsDone bool   `json:"is_done"`
}

// MonthViewDay is one cell of the month grid. Days belonging to adjacent
// months are included for grid completeness; the caller tells them apart
// by the day index itself.
type MonthViewDay struct {
	Day       int64       `json:"day"`
	DueCount  int         `json:"due_count"`
	DoneCount int         `json:"done_count"`
	AllDone   bool        `json:"all_done"`
	Tasks     []MonthTask `json:"tasks"`
}
