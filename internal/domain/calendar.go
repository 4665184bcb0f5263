package domain

import (
	"fmt"
	"time"
)

// DateLayout is the format of a date key.
const DateLayout = "2006-01-02"

// MonthData returns the cells of a Monday-first month grid: one zero time per
// leading blank, then midnight of every day of the month in order.
func MonthData(year int, month time.Month, loc *time.Location) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	blanks := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		blanks = 6
	}
	days := DaysIn(year, month)

	cells := make([]time.Time, blanks, blanks+days)
	for d := 1; d <= days; d++ {
		cells = append(cells, time.Date(year, month, d, 0, 0, 0, 0, loc))
	}
	return cells
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weeks chunks grid cells into rows of seven. The last row may be short.
func Weeks[T any](cells []T) [][]T {
	rows := make([][]T, 0, (len(cells)+6)/7)
	for len(cells) > 0 {
		n := min(7, len(cells))
		rows = append(rows, cells[:n:n])
		cells = cells[n:]
	}
	return rows
}

// DayOfWeek maps a date to its training day, or DayNone.
func DayOfWeek(t time.Time) DayType {
	switch t.Weekday() {
	case time.Monday:
		return DayMonday
	case time.Wednesday:
		return DayWednesday
	case time.Friday:
		return DayFriday
	}
	return DayNone
}

// DateKey formats the calendar date of t in t's own location. It never
// converts to UTC, so a local midnight keeps its local date.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a date key into midnight of that date in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return t, nil
}

// WorkoutID is the document key of a user's workout for a date.
func WorkoutID(userID, dateKey string) string {
	return userID + "_" + dateKey
}
