package analytics

import (
	"time"

	"github.com/angelmondragon/pointsdash/internal/analytics/aggregate"
	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// RegularInput holds the records a member's dashboard is built from.
type RegularInput struct {
	Transactions []records.Transaction
	Events       []records.Event
	Promotions   []records.Promotion
}

// BuildRegular computes the member snapshot. It performs no I/O.
func BuildRegular(in RegularInput, now time.Time, opts Options) *Snapshot {
	opts = opts.withDefaults()
	month := aggregate.FilterByWindow(in.Transactions, createdAt, aggregate.Trailing(now, MonthDays))

	return &Snapshot{
		Role:                enums.RoleRegular,
		GeneratedAt:         now,
		PointsActivity:      BuildPointsActivity(in.Transactions, now),
		TransactionInsights: BuildTransactionInsights(month, opts.MostCommonFallback),
		Engagement:          BuildEngagement(in.Events, in.Promotions, month, now),
	}
}

// BuildPointsActivity sums earned and spent points over the trailing week and month
// and lays out the daily trend.
func BuildPointsActivity(txs []records.Transaction, now time.Time) *PointsActivity {
	earnedWeek, spentWeek := earnedSpent(aggregate.FilterByWindow(txs, createdAt, aggregate.Trailing(now, WeekDays)))
	earnedMonth, spentMonth := earnedSpent(aggregate.FilterByWindow(txs, createdAt, aggregate.Trailing(now, MonthDays)))

	return &PointsActivity{
		EarnedWeek:  earnedWeek,
		SpentWeek:   spentWeek,
		NetWeek:     earnedWeek - spentWeek,
		EarnedMonth: earnedMonth,
		SpentMonth:  spentMonth,
		NetMonth:    earnedMonth - spentMonth,
		Trend:       pointsTrend(txs, now, PointsTrendDays),
	}
}

// BuildTransactionInsights expects the transactions already narrowed to the trailing month.
func BuildTransactionInsights(month []records.Transaction, fallback enums.TransactionType) *TransactionInsights {
	count := int64(len(month))
	return &TransactionInsights{
		MonthCount:     count,
		AverageValue:   roundedMean(aggregate.Sum(month, magnitude), count),
		MostCommonType: aggregate.MostCommon(aggregate.CountByCategory(month, classifyType), fallback),
	}
}

// BuildEngagement counts upcoming events, active promotions and event check-ins in month.
func BuildEngagement(events []records.Event, promotions []records.Promotion, month []records.Transaction, now time.Time) *Engagement {
	out := &Engagement{}
	for _, event := range events {
		if event.StartTime.After(now) {
			out.UpcomingEvents++
		}
	}
	for _, promotion := range promotions {
		if promotion.Status(now) == enums.PromotionStatusActive {
			out.ActivePromotions++
		}
	}
	out.EventParticipations = aggregate.CountByCategory(month, classifyType)[enums.TransactionEvent]
	return out
}
