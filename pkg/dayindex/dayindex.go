// Package dayindex implements the calendar arithmetic the engine is built
// on. A day index is the number of whole days since 1970-01-01 UTC; it is
// the universal key for due-ness and completion, so "day N" denotes the
// same calendar date everywhere regardless of the caller's timezone.
package dayindex

import "time"

const secondsPerDay = 86400

// FromTime converts a timestamp to its UTC day index, ignoring time of day.
func FromTime(t time.Time) int64 {
	return floorDiv(t.Unix(), secondsPerDay)
}

// FromDate converts a UTC calendar date to its day index.
func FromDate(year int, month time.Month, day int) int64 {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Date returns UTC midnight of the given day index.
func Date(day int64) time.Time {
	return time.Unix(day*secondsPerDay, 0).UTC()
}

// Today returns the current UTC day index.
func Today() int64 {
	return FromTime(time.Now())
}

// Weekday returns the Monday-based weekday (Mon=0 .. Sun=6) of a day index.
// Day zero, 1970-01-01, was a Thursday.
func Weekday(day int64) int {
	return int(floorMod(day+3, 7))
}

// DayOfMonth returns the 1-based day of month of a day index.
func DayOfMonth(day int64) int {
	return Date(day).Day()
}

// WeekStart returns the Monday of the week containing the given day.
func WeekStart(day int64) int64 {
	return day - int64(Weekday(day))
}

// MonthGrid returns the ordered day indices used to render a month: full
// Monday-based weeks starting on the Monday on or before the 1st, covering
// every day of the month plus the adjacent-month days needed to complete
// the first and last weeks.
func MonthGrid(year int, month time.Month) []int64 {
	first := FromDate(year, month, 1)
	// time.Date normalizes month+1 overflow, so this is the last day even
	// for December.
	last := FromDate(year, month+1, 1) - 1

	start := WeekStart(first)
	span := int(last-start) + 1
	weeks := (span + 6) / 7

	grid := make([]int64, 0, weeks*7)
	for d := start; d < start+int64(weeks*7); d++ {
		grid = append(grid, d)
	}
	return grid
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
