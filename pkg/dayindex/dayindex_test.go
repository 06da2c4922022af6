package dayindex

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestFromTimeIgnoresTimeOfDay(t *testing.T) {
	is := is.New(t)

	midnight := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 15, 23, 59, 59, 0, time.UTC)

	is.Equal(FromTime(midnight), FromTime(evening))
	is.Equal(Date(FromTime(evening)), midnight)
}

func TestEpoch(t *testing.T) {
	is := is.New(t)

	is.Equal(FromDate(1970, time.January, 1), int64(0))
	is.Equal(FromDate(1970, time.January, 2), int64(1))
	// pre-epoch days floor, they do not truncate toward zero
	is.Equal(FromDate(1969, time.December, 31), int64(-1))
	is.Equal(FromTime(time.Date(1969, time.December, 31, 23, 0, 0, 0, time.UTC)), int64(-1))
}

func TestWeekday(t *testing.T) {
	is := is.New(t)

	// 1970-01-01 was a Thursday
	is.Equal(Weekday(0), 3)
	// 2024-01-01 was a Monday
	is.Equal(Weekday(FromDate(2024, time.January, 1)), 0)
	is.Equal(Weekday(FromDate(2024, time.January, 7)), 6)
	// negative indices stay consistent: 1969-12-31 was a Wednesday
	is.Equal(Weekday(-1), 2)
}

func TestWeekStart(t *testing.T) {
	is := is.New(t)

	monday := FromDate(2024, time.January, 1)
	for offset := int64(0); offset < 7; offset++ {
		is.Equal(WeekStart(monday+offset), monday)
	}
	is.Equal(WeekStart(monday+7), monday+7)
}

func TestMonthGrid(t *testing.T) {
	is := is.New(t)

	// February 2024 starts on a Thursday and has 29 days: 3 leading days
	// plus 29 spans five weeks.
	grid := MonthGrid(2024, time.February)
	is.Equal(len(grid), 35)
	is.Equal(grid[0], FromDate(2024, time.January, 29))
	is.Equal(Weekday(grid[0]), 0)
	is.Equal(grid[len(grid)-1], FromDate(2024, time.March, 3))

	// February 2021 started on a Monday and had 28 days: exactly 4 weeks,
	// no overflow.
	grid = MonthGrid(2021, time.February)
	is.Equal(len(grid), 28)
	is.Equal(grid[0], FromDate(2021, time.February, 1))
	is.Equal(grid[len(grid)-1], FromDate(2021, time.February, 28))

	// December wraps into the next year.
	grid = MonthGrid(2024, time.December)
	is.Equal(grid[len(grid)-1], FromDate(2025, time.January, 5))

	// Grids are contiguous and full weeks.
	for i := 1; i < len(grid); i++ {
		is.Equal(grid[i], grid[i-1]+1)
	}
	is.Equal(len(grid)%7, 0)
}
