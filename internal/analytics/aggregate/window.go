package aggregate

import "time"

// DateLayout formats trend point dates.
const DateLayout = "2006-01-02"

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Trailing returns the window [now - days, now).
func Trailing(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayWindows returns one window per calendar day, oldest first, ending with the day containing now.
// Days are built with AddDate so DST transitions keep midnight boundaries.
func DayWindows(now time.Time, horizonDays int) []Window {
	if horizonDays <= 0 {
		return []Window{}
	}
	today := StartOfDay(now)
	windows := make([]Window, 0, horizonDays)
	for i := horizonDays - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		windows = append(windows, Window{Start: start, End: start.AddDate(0, 0, 1)})
	}
	return windows
}

// FilterByWindow returns the records whose timestamp lies in w, preserving input order.
// The input slice is never modified.
func FilterByWindow[T any](records []T, field func(T) time.Time, w Window) []T {
	out := make([]T, 0)
	for _, record := range records {
		if w.Contains(field(record)) {
			out = append(out, record)
		}
	}
	return out
}

// CountInWindow counts the records whose timestamp lies in w.
func CountInWindow[T any](records []T, field func(T) time.Time, w Window) int64 {
	var n int64
	for _, record := range records {
		if w.Contains(field(record)) {
			n++
		}
	}
	return n
}
