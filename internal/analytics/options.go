package analytics

import (
	"time"

	"github.com/angelmondragon/pointsdash/pkg/enums"
	"github.com/angelmondragon/pointsdash/pkg/pagination"
)

// Horizons, in calendar days.
const (
	WeekDays         = 7
	MonthDays        = 30
	PointsTrendDays  = 30
	ManagerTrendDays = 14
)

const (
	DefaultTopK        = 5
	DefaultRecentLimit = 5
)

// Options tunes the aggregation engine. Zero values fall back to defaults.
type Options struct {
	// MostCommonFallback is reported as the most common transaction type when
	// no single type strictly leads the trailing month.
	MostCommonFallback enums.TransactionType
	TopK               int
	RecentLimit        int
	// Location anchors calendar-day boundaries.
	Location   *time.Location
	JoinPolicy enums.JoinPolicy
	PageSize   int
	MaxPages   int
}

func (o Options) withDefaults() Options {
	if !o.MostCommonFallback.IsValid() {
		o.MostCommonFallback = enums.TransactionPurchase
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = DefaultRecentLimit
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if !o.JoinPolicy.IsValid() {
		o.JoinPolicy = enums.JoinFailFast
	}
	if o.PageSize <= 0 {
		o.PageSize = pagination.MaxLimit
	}
	o.PageSize = pagination.NormalizeLimit(o.PageSize)
	if o.MaxPages <= 0 {
		o.MaxPages = pagination.DefaultMaxPages
	}
	return o
}
