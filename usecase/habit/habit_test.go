package habit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/pkg/dayindex"
	"github.com/habitkit/backend/repository"
)

// memStore is an in-memory implementation of the three storage interfaces,
// enough to drive the use case without postgres.
type memStore struct {
	tasks       map[string]*domain.Task
	order       []string
	schedules   []domain.Schedule
	completions map[repository.CompletionKey]bool

	nextID      int
	scheduleErr error
}

func newMemStore() *memStore {
	return &memStore{
		tasks:       make(map[string]*domain.Task),
		completions: make(map[repository.CompletionKey]bool),
	}
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (m *memStore) ListActive(_ context.Context) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(m.order))
	for _, id := range m.order {
		if task, ok := m.tasks[id]; ok && task.IsActive {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	m.nextID++
	stored := *task
	stored.ID = fmt.Sprintf("task-%d", m.nextID)
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	m.tasks[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	clone := stored
	return &clone, nil
}

func (m *memStore) Rename(_ context.Context, id, title, notes string) error {
	task, ok := m.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.Title, task.Notes = title, notes
	return nil
}

func (m *memStore) Archive(_ context.Context, id string) error {
	task, ok := m.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.IsActive = false
	now := time.Now()
	task.ArchivedAt = &now
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	kept := m.schedules[:0]
	for _, s := range m.schedules {
		if s.TaskID != id {
			kept = append(kept, s)
		}
	}
	m.schedules = kept
	for key := range m.completions {
		if key.TaskID == id {
			delete(m.completions, key)
		}
	}
	return nil
}

func (m *memStore) DeleteAll(context.Context) error {
	m.tasks = make(map[string]*domain.Task)
	m.order = nil
	m.schedules = nil
	m.completions = make(map[repository.CompletionKey]bool)
	return nil
}

func (m *memStore) ListByTask(_ context.Context, taskID string) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, s := range m.schedules {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveFrom > out[j].EffectiveFrom
	})
	return out, nil
}

func (m *memStore) Current(_ context.Context, taskID string) (*domain.Schedule, error) {
	for i := range m.schedules {
		if m.schedules[i].TaskID == taskID && m.schedules[i].EffectiveTo == nil {
			clone := m.schedules[i]
			return &clone, nil
		}
	}
	return nil, domain.ErrScheduleNotFound
}

func (m *memStore) ListEffectiveInRange(_ context.Context, from, to int64) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, s := range m.schedules {
		if s.EffectiveFrom > to {
			continue
		}
		if s.EffectiveTo != nil && *s.EffectiveTo < from {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) ListAll(context.Context) ([]domain.Schedule, error) {
	return append([]domain.Schedule(nil), m.schedules...), nil
}

func (m *memStore) CreateSchedule(_ context.Context, schedule *domain.Schedule) error {
	if m.scheduleErr != nil {
		return m.scheduleErr
	}
	stored := *schedule
	if stored.ID == "" {
		m.nextID++
		stored.ID = fmt.Sprintf("schedule-%d", m.nextID)
	}
	m.schedules = append(m.schedules, stored)
	return nil
}

func (m *memStore) Transition(ctx context.Context, taskID string, closeAt int64, next *domain.Schedule) error {
	closed := false
	for i := range m.schedules {
		if m.schedules[i].TaskID == taskID && m.schedules[i].EffectiveTo == nil {
			end := closeAt
			m.schedules[i].EffectiveTo = &end
			closed = true
			break
		}
	}
	if !closed {
		return domain.ErrScheduleNotFound
	}
	return m.CreateSchedule(ctx, next)
}

func (m *memStore) IsCompleted(_ context.Context, taskID string, day int64) (bool, error) {
	return m.completions[repository.CompletionKey{TaskID: taskID, Day: day}], nil
}

func (m *memStore) Set(_ context.Context, taskID string, day int64, done bool) error {
	key := repository.CompletionKey{TaskID: taskID, Day: day}
	if done {
		m.completions[key] = true
	} else {
		delete(m.completions, key)
	}
	return nil
}

func (m *memStore) DaysByTask(_ context.Context, taskID string) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for key := range m.completions {
		if key.TaskID == taskID {
			out[key.Day] = true
		}
	}
	return out, nil
}

func (m *memStore) ListRange(_ context.Context, from, to int64) (map[repository.CompletionKey]bool, error) {
	out := make(map[repository.CompletionKey]bool)
	for key := range m.completions {
		if key.Day >= from && key.Day <= to {
			out[key] = true
		}
	}
	return out, nil
}

// scheduleRepo adapts memStore to the schedule interface, whose Create
// method name collides with the task one.
type scheduleRepo struct{ *memStore }

func (r scheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) error {
	return r.CreateSchedule(ctx, schedule)
}

func newTestUseCase(store *memStore, today int64) *UseCase {
	uc := New(store, scheduleRepo{store}, store, nil, nil, nil)
	uc.today = func() int64 { return today }
	return uc
}

func TestAddTaskCreatesScheduleFromToday(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 500)

	task, err := uc.AddTask(context.Background(), "  Meditate  ", "10 minutes", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.Title != "Meditate" {
		t.Errorf("title = %q, want trimmed %q", task.Title, "Meditate")
	}

	current, err := store.Current(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current.EffectiveFrom != 500 {
		t.Errorf("EffectiveFrom = %d, want 500", current.EffectiveFrom)
	}
	if current.Kind != domain.KindDaily {
		t.Errorf("Kind = %q, want daily", current.Kind)
	}
}

func TestAddTaskValidation(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		params ScheduleParams
		want   error
	}{
		{"empty title", "   ", ScheduleParams{Frequency: "daily"}, domain.ErrEmptyTitle},
		{"weekly without weekdays", "Run", ScheduleParams{Frequency: "weekly"}, domain.ErrEmptyWeekdayMask},
		{"monthday too high", "Pay rent", ScheduleParams{Frequency: "monthly", Monthday: 29}, domain.ErrMonthdayRange},
		{"monthday missing", "Pay rent", ScheduleParams{Frequency: "monthly"}, domain.ErrMonthdayRange},
		{"zero interval", "Water plants", ScheduleParams{Frequency: "custom"}, domain.ErrIntervalRange},
		{"unknown frequency", "Read", ScheduleParams{Frequency: "yearly"}, domain.ErrUnknownFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			uc := newTestUseCase(store, 500)

			if _, err := uc.AddTask(context.Background(), tt.title, "", tt.params); !errors.Is(err, tt.want) {
				t.Fatalf("AddTask error = %v, want %v", err, tt.want)
			}
			if len(store.tasks) != 0 || len(store.schedules) != 0 {
				t.Errorf("validation failure must not persist anything, got %d tasks %d schedules",
					len(store.tasks), len(store.schedules))
			}
		})
	}
}

func TestAddTaskRollsBackOnScheduleFailure(t *testing.T) {
	store := newMemStore()
	store.scheduleErr = domain.StorageError("insert schedule", errors.New("connection reset"))
	uc := newTestUseCase(store, 500)

	if _, err := uc.AddTask(context.Background(), "Stretch", "", ScheduleParams{Frequency: "daily"}); err == nil {
		t.Fatal("AddTask should fail when the schedule insert fails")
	}
	if len(store.tasks) != 0 {
		t.Errorf("orphaned task left behind: %d tasks", len(store.tasks))
	}
}

func TestToggleCompletionIsSelfInverse(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 500)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Journal", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if err := uc.ToggleCompletion(ctx, task.ID, 500); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if done, _ := store.IsCompleted(ctx, task.ID, 500); !done {
		t.Error("after one toggle the day should be completed")
	}

	if err := uc.ToggleCompletion(ctx, task.ID, 500); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if done, _ := store.IsCompleted(ctx, task.ID, 500); done {
		t.Error("after two toggles the day should be back to not completed")
	}
	if len(store.completions) != 0 {
		t.Errorf("undone completion should leave no row, got %d", len(store.completions))
	}
}

func TestToggleCompletionUnknownTask(t *testing.T) {
	uc := newTestUseCase(newMemStore(), 500)

	err := uc.ToggleCompletion(context.Background(), "missing", 500)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("error = %v, want %v", err, domain.ErrTaskNotFound)
	}
}

func TestEditTaskTransitionsSchedule(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 100)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Gym", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	uc.today = func() int64 { return 200 }
	params := ScheduleParams{Frequency: "weekly", WeekdayMask: domain.MaskFromWeekdays(0, 3)}
	if err := uc.EditTask(ctx, task.ID, "Gym", "push day", params); err != nil {
		t.Fatalf("EditTask: %v", err)
	}

	versions, _ := store.ListByTask(ctx, task.ID)
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	if versions[0].Kind != domain.KindWeekly || versions[0].EffectiveFrom != 200 || versions[0].EffectiveTo != nil {
		t.Errorf("new window wrong: %+v", versions[0])
	}
	if versions[1].EffectiveTo == nil || *versions[1].EffectiveTo != 199 {
		t.Errorf("old window should close at 199, got %+v", versions[1].EffectiveTo)
	}

	// day 150 still falls in the daily window
	if s := domain.EffectiveSchedule(versions, 150); s == nil || s.Kind != domain.KindDaily {
		t.Errorf("history rewritten: schedule at 150 = %+v", s)
	}
}

func TestEditTaskTitleOnlyKeepsWindow(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 100)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Gym", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	uc.today = func() int64 { return 200 }
	if err := uc.EditTask(ctx, task.ID, "Morning gym", "", ScheduleParams{Frequency: "daily"}); err != nil {
		t.Fatalf("EditTask: %v", err)
	}

	versions, _ := store.ListByTask(ctx, task.ID)
	if len(versions) != 1 {
		t.Fatalf("same rule must not open a new window, got %d versions", len(versions))
	}
	if versions[0].EffectiveTo != nil {
		t.Errorf("window should stay open, got close at %d", *versions[0].EffectiveTo)
	}
	if got, _ := store.GetByID(ctx, task.ID); got.Title != "Morning gym" {
		t.Errorf("title = %q, want %q", got.Title, "Morning gym")
	}
}

func TestListTasksStats(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 106)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Read", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	// backdate the schedule so history exists
	store.schedules[0].EffectiveFrom = 100
	for _, day := range []int64{100, 101, 102, 103, 104, 106} {
		store.completions[repository.CompletionKey{TaskID: task.ID, Day: day}] = true
	}

	out, err := uc.ListTasks(ctx, nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}

	got := out[0]
	if got.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", got.CurrentStreak)
	}
	if got.BestStreak != 5 {
		t.Errorf("BestStreak = %d, want 5", got.BestStreak)
	}
	if !got.DueToday || !got.DoneToday {
		t.Errorf("DueToday/DoneToday = %v/%v, want true/true", got.DueToday, got.DoneToday)
	}

	// evaluating an earlier day reuses the same history
	day := int64(105)
	out, err = uc.ListTasks(ctx, &day)
	if err != nil {
		t.Fatalf("ListTasks(105): %v", err)
	}
	if out[0].DoneToday {
		t.Error("day 105 was missed, DoneToday should be false")
	}
	if out[0].CurrentStreak != 5 {
		t.Errorf("CurrentStreak at 105 = %d, want 5 (105 itself has grace)", out[0].CurrentStreak)
	}
}

func TestMonthViewCountsAndStability(t *testing.T) {
	store := newMemStore()
	editDay := dayindex.FromDate(2024, time.March, 15)
	uc := newTestUseCase(store, dayindex.FromDate(2024, time.March, 1))
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Stretch", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	done := dayindex.FromDate(2024, time.March, 4)
	if err := uc.ToggleCompletion(ctx, task.ID, done); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	cellFor := func(view []domain.MonthViewDay, day int64) domain.MonthViewDay {
		for _, cell := range view {
			if cell.Day == day {
				return cell
			}
		}
		t.Fatalf("day %d missing from grid", day)
		return domain.MonthViewDay{}
	}

	view, err := uc.MonthView(ctx, 2024, time.March)
	if err != nil {
		t.Fatalf("MonthView: %v", err)
	}
	cell := cellFor(view, done)
	if cell.DueCount != 1 || cell.DoneCount != 1 || !cell.AllDone {
		t.Errorf("completed day cell = %+v", cell)
	}
	if before := cellFor(view, dayindex.FromDate(2024, time.February, 28)); before.DueCount != 0 {
		t.Errorf("days before the first window must not be due, got %+v", before)
	}

	// switching to weekly mid-month must not rewrite earlier cells
	uc.today = func() int64 { return editDay }
	if err := uc.EditTask(ctx, task.ID, "Stretch", "", ScheduleParams{
		Frequency:   "weekly",
		WeekdayMask: domain.MaskFromWeekdays(0),
	}); err != nil {
		t.Fatalf("EditTask: %v", err)
	}

	view, err = uc.MonthView(ctx, 2024, time.March)
	if err != nil {
		t.Fatalf("MonthView after edit: %v", err)
	}
	if cell := cellFor(view, done); cell.DueCount != 1 || !cell.AllDone {
		t.Errorf("history rewritten after edit: %+v", cell)
	}
	tuesday := dayindex.FromDate(2024, time.March, 19)
	if cell := cellFor(view, tuesday); cell.DueCount != 0 {
		t.Errorf("weekly rule should drop Tuesday due-ness, got %+v", cell)
	}
	monday := dayindex.FromDate(2024, time.March, 18)
	if cell := cellFor(view, monday); cell.DueCount != 1 {
		t.Errorf("weekly rule should keep Monday due, got %+v", cell)
	}
}

func TestArchiveTaskKeepsHistory(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 500)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Gym", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := uc.ToggleCompletion(ctx, task.ID, 500); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := uc.ArchiveTask(ctx, task.ID); err != nil {
		t.Fatalf("ArchiveTask: %v", err)
	}

	out, err := uc.ListTasks(ctx, nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("archived task still listed: %d entries", len(out))
	}
	if len(store.schedules) != 1 || len(store.completions) != 1 {
		t.Errorf("archive must keep history, got %d schedules %d completions",
			len(store.schedules), len(store.completions))
	}

	if err := uc.ToggleCompletion(ctx, task.ID, 501); !errors.Is(err, domain.ErrTaskArchived) {
		t.Errorf("toggle on archived task error = %v, want %v", err, domain.ErrTaskArchived)
	}
	if err := uc.EditTask(ctx, task.ID, "Gym", "", ScheduleParams{Frequency: "daily"}); !errors.Is(err, domain.ErrTaskArchived) {
		t.Errorf("edit on archived task error = %v, want %v", err, domain.ErrTaskArchived)
	}

	if err := uc.ArchiveTask(ctx, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("archive unknown task error = %v, want %v", err, domain.ErrTaskNotFound)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, 500)
	ctx := context.Background()

	task, err := uc.AddTask(ctx, "Gym", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := uc.ToggleCompletion(ctx, task.ID, 500); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := uc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if len(store.tasks) != 0 || len(store.schedules) != 0 || len(store.completions) != 0 {
		t.Errorf("delete must cascade, got %d tasks %d schedules %d completions",
			len(store.tasks), len(store.schedules), len(store.completions))
	}

	if err := uc.DeleteTask(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("second delete error = %v, want %v", err, domain.ErrTaskNotFound)
	}
}

func TestWeeklyStreakUseCase(t *testing.T) {
	store := newMemStore()
	today := dayindex.FromDate(2024, time.March, 20) // a Wednesday
	uc := newTestUseCase(store, today)
	ctx := context.Background()

	streak, err := uc.WeeklyStreak(ctx)
	if err != nil {
		t.Fatalf("WeeklyStreak: %v", err)
	}
	if streak != 0 {
		t.Fatalf("streak with no tasks = %d, want 0", streak)
	}

	task, err := uc.AddTask(ctx, "Read", "", ScheduleParams{Frequency: "daily"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	thisMonday := dayindex.WeekStart(today)
	store.schedules[0].EffectiveFrom = thisMonday - 14
	for day := thisMonday - 14; day <= today; day++ {
		store.completions[repository.CompletionKey{TaskID: task.ID, Day: day}] = true
	}

	streak, err = uc.WeeklyStreak(ctx)
	if err != nil {
		t.Fatalf("WeeklyStreak: %v", err)
	}
	if streak != 2 {
		t.Errorf("streak = %d, want 2 full perfect weeks", streak)
	}
}
