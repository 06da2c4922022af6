package habit

import (
	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/pkg/dayindex"
	"github.com/habitkit/backend/repository"
)

// currentStreak walks backward from refDay counting consecutive completed
// due days. Non-due days are transparent. A due day that is not completed
// breaks the streak, except refDay itself: "not yet done today" is not a
// break. The walk ends when no schedule version covers the day.
func currentStreak(schedules []domain.Schedule, done map[int64]bool, refDay int64) int {
	streak := 0
	for day := refDay; ; day-- {
		s := domain.EffectiveSchedule(schedules, day)
		if s == nil {
			break
		}
		if !s.IsDue(day) {
			continue
		}
		if done[day] {
			streak++
			continue
		}
		if day == refDay {
			continue
		}
		break
	}
	return streak
}

// bestStreak scans the task's full schedule history forward and tracks the
// longest run of completed due days. The reference-day grace rule does not
// apply mid-history.
func bestStreak(schedules []domain.Schedule, done map[int64]bool, refDay int64) int {
	start, ok := earliestFrom(schedules)
	if !ok {
		return 0
	}

	best, run := 0, 0
	for day := start; day <= refDay; day++ {
		s := domain.EffectiveSchedule(schedules, day)
		if s == nil || !s.IsDue(day) {
			continue
		}
		if done[day] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// weeklyStreak counts consecutive perfect Monday-based weeks ending at the
// week containing today. A week is perfect when every due occurrence of
// every task in it is completed. The in-progress week counts only when
// already perfect and never breaks the streak; weeks with no due
// occurrences are transparent. The scan floors at the earliest
// effective_from of any schedule.
func weeklyStreak(schedules []domain.Schedule, completions map[repository.CompletionKey]bool, today int64) int {
	earliest, ok := earliestFrom(schedules)
	if !ok {
		return 0
	}
	byTask := groupByTask(schedules)

	streak := 0
	monday := dayindex.WeekStart(today)
	if perfect, hasDue := weekStatus(byTask, completions, monday); hasDue && perfect {
		streak++
	}

	for monday -= 7; monday+6 >= earliest; monday -= 7 {
		perfect, hasDue := weekStatus(byTask, completions, monday)
		if !hasDue {
			continue
		}
		if !perfect {
			break
		}
		streak++
	}
	return streak
}

// weekStatus reports whether the week starting at monday had every due
// occurrence completed, and whether it had any due occurrence at all.
func weekStatus(byTask map[string][]domain.Schedule, completions map[repository.CompletionKey]bool, monday int64) (perfect, hasDue bool) {
	perfect = true
	for taskID, versions := range byTask {
		for day := monday; day <= monday+6; day++ {
			s := domain.EffectiveSchedule(versions, day)
			if s == nil || !s.IsDue(day) {
				continue
			}
			hasDue = true
			if !completions[repository.CompletionKey{TaskID: taskID, Day: day}] {
				perfect = false
			}
		}
	}
	return perfect, hasDue
}

func groupByTask(schedules []domain.Schedule) map[string][]domain.Schedule {
	byTask := make(map[string][]domain.Schedule)
	for _, s := range schedules {
		byTask[s.TaskID] = append(byTask[s.TaskID], s)
	}
	return byTask
}

func earliestFrom(schedules []domain.Schedule) (int64, bool) {
	if len(schedules) == 0 {
		return 0, false
	}
	earliest := schedules[0].EffectiveFrom
	for _, s := range schedules[1:] {
		if s.EffectiveFrom < earliest {
			earliest = s.EffectiveFrom
		}
	}
	return earliest, true
}
