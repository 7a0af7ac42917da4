package aggregate

import (
	"cmp"
	"slices"
)

// TopK returns at most k records ordered by descending score.
// Records with equal scores keep their input order. The input slice is not reordered.
func TopK[T any, S cmp.Ordered](records []T, score func(T) S, k int) []T {
	if k <= 0 || len(records) == 0 {
		return []T{}
	}
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b T) int {
		return cmp.Compare(score(b), score(a))
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
