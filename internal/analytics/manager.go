package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pointsdash/internal/analytics/aggregate"
	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// OverviewCounts are the remote totals behind the overview facet.
type OverviewCounts struct {
	Users        int
	Transactions int
	Events       int
	Promotions   int
}

func BuildOverview(counts OverviewCounts) *Overview {
	return &Overview{
		TotalUsers:        int64(counts.Users),
		TotalTransactions: int64(counts.Transactions),
		TotalEvents:       int64(counts.Events),
		TotalPromotions:   int64(counts.Promotions),
	}
}

// BuildUserAnalytics summarizes verification, balances, rankings and sign-up growth.
// Transactions are joined to users by utorid for the activity ranking.
func BuildUserAnalytics(users []records.User, txs []records.Transaction, now time.Time, topK int) *UserAnalytics {
	total := int64(len(users))
	var verified, points int64
	for _, user := range users {
		if user.Verified {
			verified++
		}
		points += user.Points
	}

	activity := aggregate.CountByCategory(txs, func(tx records.Transaction) (string, bool) {
		return tx.UTORid, tx.UTORid != ""
	})
	rank := func(selected []records.User) []UserRank {
		out := make([]UserRank, 0, len(selected))
		for _, user := range selected {
			out = append(out, UserRank{
				ID:               user.ID,
				Name:             user.Name,
				UTORid:           user.UTORid,
				Points:           user.Points,
				TransactionCount: activity[user.UTORid],
			})
		}
		return out
	}

	dated := make([]records.User, 0, len(users))
	for _, user := range users {
		if user.CreatedAt != nil {
			dated = append(dated, user)
		}
	}

	return &UserAnalytics{
		Total:            total,
		Verified:         verified,
		Unverified:       total - verified,
		VerificationRate: ratio(verified, total),
		AveragePoints:    roundedMean(points, total),
		TopByPoints: rank(aggregate.TopK(users, func(u records.User) int64 {
			return u.Points
		}, topK)),
		TopByTransactionCount: rank(aggregate.TopK(users, func(u records.User) int64 {
			return activity[u.UTORid]
		}, topK)),
		Growth: countTrend(dated, func(u records.User) time.Time { return *u.CreatedAt }, now, ManagerTrendDays),
	}
}

func BuildTransactionAnalytics(txs []records.Transaction, now time.Time) *TransactionAnalytics {
	total := int64(len(txs))
	return &TransactionAnalytics{
		Total:         total,
		ByType:        aggregate.CountByCategory(txs, classifyType),
		VolumeByType:  aggregate.ReduceByCategory(txs, classifyType, magnitude),
		Volume:        countTrend(txs, createdAt, now, ManagerTrendDays),
		AverageAmount: roundedMean(aggregate.Sum(txs, magnitude), total),
	}
}

// BuildEventAnalytics buckets events by schedule. The fill rate averages only
// events that declare a capacity.
func BuildEventAnalytics(events []records.Event, now time.Time, topK int) *EventAnalytics {
	out := &EventAnalytics{Total: int64(len(events))}
	fill := decimal.Zero
	var capped int64
	for _, event := range events {
		switch {
		case event.StartTime.After(now):
			out.Upcoming++
		case event.EndTime.Before(now):
			out.Past++
		default:
			out.Ongoing++
		}
		if event.Published {
			out.Published++
		}
		out.TotalGuests += event.GuestCount
		if event.HasCapacity() {
			fill = fill.Add(decimal.NewFromInt(event.GuestCount).Div(decimal.NewFromInt(*event.Capacity)))
			capped++
		}
	}
	if capped > 0 {
		out.AverageFillRate = fill.Div(decimal.NewFromInt(capped)).Round(4).InexactFloat64()
	}
	out.MostPopular = aggregate.TopK(events, func(e records.Event) int64 { return e.GuestCount }, topK)
	return out
}

func BuildPromotionAnalytics(promotions []records.Promotion, now time.Time, topK int) *PromotionAnalytics {
	statuses := aggregate.CountByCategory(promotions, func(p records.Promotion) (enums.PromotionStatus, bool) {
		return p.Status(now), true
	})
	return &PromotionAnalytics{
		Total:    int64(len(promotions)),
		Active:   statuses[enums.PromotionStatusActive],
		Upcoming: statuses[enums.PromotionStatusUpcoming],
		Expired:  statuses[enums.PromotionStatusExpired],
		ByType: aggregate.CountByCategory(promotions, func(p records.Promotion) (enums.PromotionType, bool) {
			return p.Type, p.Type.IsValid()
		}),
		MostEffective: aggregate.TopK(promotions, func(p records.Promotion) int64 { return p.UsageCount }, topK),
	}
}

// BuildFinancial reports lifetime issuance against redemption.
func BuildFinancial(txs []records.Transaction, now time.Time) *FinancialAnalytics {
	issued, redeemed := earnedSpent(txs)
	return &FinancialAnalytics{
		PointsIssued:   issued,
		PointsRedeemed: redeemed,
		NetCirculation: issued - redeemed,
		RedemptionRate: ratio(redeemed, issued),
		Trend:          pointsTrend(txs, now, ManagerTrendDays),
	}
}
