package aggregate

// Classifier maps a record to its category. ok=false drops the record.
type Classifier[T any, K comparable] func(T) (key K, ok bool)

// ReduceByCategory sums weight(record) per category. Categories with no records are absent.
func ReduceByCategory[T any, K comparable](records []T, classify Classifier[T, K], weight func(T) int64) map[K]int64 {
	totals := make(map[K]int64)
	for _, record := range records {
		key, ok := classify(record)
		if !ok {
			continue
		}
		totals[key] += weight(record)
	}
	return totals
}

// CountByCategory counts records per category.
func CountByCategory[T any, K comparable](records []T, classify Classifier[T, K]) map[K]int64 {
	return ReduceByCategory(records, classify, func(T) int64 { return 1 })
}

// MostCommon returns the category with the strictly greatest total.
// An empty mapping, an all-zero mapping, or a tie for the lead resolves to fallback.
func MostCommon[K comparable](totals map[K]int64, fallback K) K {
	var (
		best    K
		bestVal int64
		tied    bool
		found   bool
	)
	for key, value := range totals {
		switch {
		case !found || value > bestVal:
			best, bestVal, tied, found = key, value, false, true
		case value == bestVal:
			tied = true
		}
	}
	if !found || bestVal <= 0 || tied {
		return fallback
	}
	return best
}
