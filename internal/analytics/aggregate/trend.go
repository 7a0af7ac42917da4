package aggregate

import "time"

// BuildTrend produces exactly horizonDays points, oldest first, one per calendar day ending today.
// point receives the day's window and the records that fall in it; days without records still
// yield a point built from an empty bucket.
func BuildTrend[T any, P any](
	records []T,
	field func(T) time.Time,
	now time.Time,
	horizonDays int,
	point func(day Window, bucket []T) P,
) []P {
	days := DayWindows(now, horizonDays)
	points := make([]P, 0, len(days))
	if len(days) == 0 {
		return points
	}
	horizon := Window{Start: days[0].Start, End: days[len(days)-1].End}
	inHorizon := FilterByWindow(records, field, horizon)
	for _, day := range days {
		points = append(points, point(day, FilterByWindow(inHorizon, field, day)))
	}
	return points
}

// Sum adds weight(record) over records.
func Sum[T any](records []T, weight func(T) int64) int64 {
	var total int64
	for _, record := range records {
		total += weight(record)
	}
	return total
}
