package habit

import (
	"sort"

	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/repository"
)

// buildMonthView joins the schedule evaluator with the completion snapshot
// for every grid day. Pure function of its inputs.
func buildMonthView(
	grid []int64,
	tasks []domain.Task,
	schedules []domain.Schedule,
	completions map[repository.CompletionKey]bool,
) []domain.MonthViewDay {
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	byTask := make(map[string][]domain.Schedule, len(tasks))
	for _, s := range schedules {
		if _, active := titles[s.TaskID]; !active {
			continue
		}
		byTask[s.TaskID] = append(byTask[s.TaskID], s)
	}

	view := make([]domain.MonthViewDay, 0, len(grid))
	for _, day := range grid {
		cell := domain.MonthViewDay{Day: day, Tasks: []domain.MonthTask{}}

		for taskID, versions := range byTask {
			s := domain.EffectiveSchedule(versions, day)
			if s == nil || !s.IsDue(day) {
				continue
			}
			done := completions[repository.CompletionKey{TaskID: taskID, Day: day}]
			cell.DueCount++
			if done {
				cell.DoneCount++
			}
			cell.Tasks = append(cell.Tasks, domain.MonthTask{
				ID:     taskID,
				Title:  titles[taskID],
				IsDone: done,
			})
		}

		sort.Slice(cell.Tasks, func(i, j int) bool {
			return cell.Tasks[i].ID < cell.Tasks[j].ID
		})
		cell.AllDone = cell.DueCount > 0 && cell.DueCount == cell.DoneCount
		view = append(view, cell)
	}
	return view
}
