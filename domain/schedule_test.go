package domain

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/habitkit/backend/pkg/dayindex"
)

func int64Ptr(v int64) *int64 { return &v }

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		want     error
	}{
		{"daily", Schedule{Kind: KindDaily}, nil},
		{"weekly with mask", Schedule{Kind: KindWeekly, WeekdayMask: MaskFromWeekdays(0, 2)}, nil},
		{"weekly empty mask", Schedule{Kind: KindWeekly}, ErrEmptyWeekdayMask},
		{"monthly", Schedule{Kind: KindMonthly, Monthday: 15}, nil},
		{"monthly zero", Schedule{Kind: KindMonthly}, ErrMonthdayRange},
		{"monthly 29", Schedule{Kind: KindMonthly, Monthday: 29}, ErrMonthdayRange},
		{"custom", Schedule{Kind: KindCustom, IntervalDays: 3}, nil},
		{"custom zero interval", Schedule{Kind: KindCustom}, ErrIntervalRange},
		{"unknown kind", Schedule{Kind: "yearly"}, ErrUnknownFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(tt.schedule.Validate(), tt.want)
		})
	}
}

func TestIsDueRespectsEffectiveWindow(t *testing.T) {
	is := is.New(t)

	s := Schedule{Kind: KindDaily, EffectiveFrom: 100, EffectiveTo: int64Ptr(110)}
	is.True(!s.IsDue(99))
	is.True(s.IsDue(100))
	is.True(s.IsDue(110))
	is.True(!s.IsDue(111))

	open := Schedule{Kind: KindDaily, EffectiveFrom: 100}
	is.True(open.IsDue(100_000))
}

func TestIsDueWeekly(t *testing.T) {
	is := is.New(t)

	monday := dayindex.FromDate(2024, time.January, 1)
	s := Schedule{Kind: KindWeekly, WeekdayMask: MaskFromWeekdays(0, 2)}

	is.True(s.IsDue(monday))      // Mon
	is.True(!s.IsDue(monday + 1)) // Tue
	is.True(s.IsDue(monday + 2))  // Wed
	is.True(!s.IsDue(monday + 6)) // Sun
	is.True(s.IsDue(monday + 7))  // next Mon

	// malformed state is never-due, not an error
	empty := Schedule{Kind: KindWeekly}
	is.True(!empty.IsDue(monday))
}

func TestIsDueMonthly(t *testing.T) {
	is := is.New(t)

	s := Schedule{Kind: KindMonthly, Monthday: 28}
	is.True(s.IsDue(dayindex.FromDate(2024, time.February, 28)))
	is.True(!s.IsDue(dayindex.FromDate(2024, time.February, 29)))
	is.True(s.IsDue(dayindex.FromDate(2024, time.March, 28)))

	// a monthday February never has (malformed beyond the 1..28 cap)
	// simply never fires that month
	thirty := Schedule{Kind: KindMonthly, Monthday: 30}
	for _, day := range dayindex.MonthGrid(2024, time.February) {
		if dayindex.Date(day).Month() == time.February {
			is.True(!thirty.IsDue(day))
		}
	}
	is.True(thirty.IsDue(dayindex.FromDate(2024, time.March, 30)))
}

func TestIsDueCustomInterval(t *testing.T) {
	is := is.New(t)

	s := Schedule{Kind: KindCustom, IntervalDays: 3, EffectiveFrom: 100}
	is.True(s.IsDue(100))
	is.True(!s.IsDue(101))
	is.True(!s.IsDue(102))
	is.True(s.IsDue(103))
	is.True(s.IsDue(109))

	// interval below 1 is never-due
	bad := Schedule{Kind: KindCustom, EffectiveFrom: 100}
	is.True(!bad.IsDue(100))
}

func TestWeekdayMaskRoundTrip(t *testing.T) {
	is := is.New(t)

	// every subset of {0..6} survives encode/decode
	for mask := 0; mask < 1<<7; mask++ {
		is.Equal(MaskFromWeekdays(Weekdays(mask)...), mask)
	}
	// out-of-range indices are ignored
	is.Equal(MaskFromWeekdays(-1, 7, 3), MaskFromWeekdays(3))
}

func TestEffectiveSchedule(t *testing.T) {
	is := is.New(t)

	schedules := []Schedule{
		{ID: "v2", Kind: KindDaily, EffectiveFrom: 200},
		{ID: "v1", Kind: KindWeekly, WeekdayMask: 1, EffectiveFrom: 100, EffectiveTo: int64Ptr(199)},
	}

	is.Equal(EffectiveSchedule(schedules, 99), (*Schedule)(nil))
	is.Equal(EffectiveSchedule(schedules, 150).ID, "v1")
	is.Equal(EffectiveSchedule(schedules, 199).ID, "v1")
	is.Equal(EffectiveSchedule(schedules, 200).ID, "v2")
	is.Equal(EffectiveSchedule(schedules, 5000).ID, "v2")
}

func TestSameRule(t *testing.T) {
	is := is.New(t)

	a := &Schedule{Kind: KindWeekly, WeekdayMask: 5, EffectiveFrom: 10}
	b := &Schedule{Kind: KindWeekly, WeekdayMask: 5, EffectiveFrom: 500}
	c := &Schedule{Kind: KindWeekly, WeekdayMask: 3, EffectiveFrom: 10}

	is.True(a.SameRule(b)) // windows are ignored
	is.True(!a.SameRule(c))
	is.True(!a.SameRule(&Schedule{Kind: KindDaily}))
}
