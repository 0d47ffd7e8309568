package meal

import "time"

// CalendarDay drops the clock reading of t and keeps its wall-clock date,
// expressed as midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := CalendarDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey identifies the week containing t by its Monday, as YYYY-MM-DD.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(DateLayout)
}

// ParseWeekKey validates a week key and returns its Monday.
func ParseWeekKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil || t.Weekday() != time.Monday {
		return time.Time{}, ErrInvalidWeekKey
	}
	return t, nil
}

// SameWeek reports whether a and b fall in the same Monday-based week.
func SameWeek(a, b time.Time) bool {
	return WeekStart(a).Equal(WeekStart(b))
}
