package domain

import (
	"github.com/habitkit/backend/pkg/dayindex"
)

// ScheduleKind enumerates the recurrence variants.
type ScheduleKind string

const (
	KindDaily   ScheduleKind = "daily"
	KindWeekly  ScheduleKind = "weekly"
	KindMonthly ScheduleKind = "monthly"
	KindCustom  ScheduleKind = "custom"
)

// Schedule is one version of a task's recurrence rule. A task's history is
// a sequence of schedules whose effective windows partition its active
// lifetime: never mutated in place, always closed and reopened so that
// historical due/done computations stay stable under edits.
type Schedule struct {
	ID            string       `json:"id"`
	TaskID        string       `json:"task_id"`
	EffectiveFrom int64        `json:"effective_from"`
	EffectiveTo   *int64       `json:"effective_to,omitempty"`
	Kind          ScheduleKind `json:"type"`
	WeekdayMask   int          `json:"weekday_mask,omitempty"`
	Monthday      int          `json:"monthday,omitempty"`
	IntervalDays  int          `json:"interval_days,omitempty"`
}

// Validate rejects malformed schedule parameters before any state mutation.
func (s *Schedule) Validate() error {
	switch s.Kind {
	case KindDaily:
		return nil
	case KindWeekly:
		if s.WeekdayMask&weekMaskAll == 0 {
			return ErrEmptyWeekdayMask
		}
		return nil
	case KindMonthly:
		if s.Monthday < 1 || s.Monthday > 28 {
			return ErrMonthdayRange
		}
		return nil
	case KindCustom:
		if s.IntervalDays < 1 {
			return ErrIntervalRange
		}
		return nil
	default:
		return ErrUnknownFrequency
	}
}

// IsDue reports whether the task governed by this schedule version is due
// on the given day. Malformed stored state (empty weekly mask, interval
// below 1) evaluates to never-due rather than failing; Validate guards
// creation and edits.
func (s *Schedule) IsDue(day int64) bool {
	if s == nil || day < s.EffectiveFrom {
		return false
	}
	if s.EffectiveTo != nil && day > *s.EffectiveTo {
		return false
	}

	switch s.Kind {
	case KindDaily:
		return true
	case KindWeekly:
		return s.WeekdayMask&(1<<dayindex.Weekday(day)) != 0
	case KindMonthly:
		return dayindex.DayOfMonth(day) == s.Monthday
	case KindCustom:
		if s.IntervalDays < 1 {
			return false
		}
		return (day-s.EffectiveFrom)%int64(s.IntervalDays) == 0
	default:
		return false
	}
}

// Covers reports whether the day falls inside the effective window.
func (s *Schedule) Covers(day int64) bool {
	if s == nil || day < s.EffectiveFrom {
		return false
	}
	return s.EffectiveTo == nil || day <= *s.EffectiveTo
}

// SameRule reports whether two schedules describe the same recurrence,
// ignoring their effective windows. Title-only edits use this to keep
// schedule history untouched.
func (s *Schedule) SameRule(other *Schedule) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Kind == other.Kind &&
		s.WeekdayMask == other.WeekdayMask &&
		s.Monthday == other.Monthday &&
		s.IntervalDays == other.IntervalDays
}

// EffectiveSchedule selects the version whose window covers day, or nil if
// the task had no schedule on that day (e.g. it was created later).
func EffectiveSchedule(schedules []Schedule, day int64) *Schedule {
	for i := range schedules {
		if schedules[i].Covers(day) {
			return &schedules[i]
		}
	}
	return nil
}

const weekMaskAll = 1<<7 - 1

// MaskFromWeekdays builds a 7-bit mask from Monday-based weekday indices.
// Indices outside 0..6 are ignored.
func MaskFromWeekdays(weekdays ...int) int {
	mask := 0
	for _, wd := range weekdays {
		if wd >= 0 && wd <= 6 {
			mask |= 1 << wd
		}
	}
	return mask
}

// Weekdays decodes a mask back into sorted Monday-based weekday indices.
func Weekdays(mask int) []int {
	out := make([]int, 0, 7)
	for wd := 0; wd <= 6; wd++ {
		if mask&(1<<wd) != 0 {
			out = append(out, wd)
		}
	}
	return out
}
