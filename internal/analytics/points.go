package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pointsdash/internal/analytics/aggregate"
	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

type flow string

const (
	flowEarned flow = "earned"
	flowSpent  flow = "spent"
)

// classifyFlow buckets a transaction as earned or spent. Transfers move points
// between members and count as neither.
func classifyFlow(tx records.Transaction) (flow, bool) {
	switch {
	case tx.Type.Earns():
		return flowEarned, true
	case tx.Type.Spends():
		return flowSpent, true
	}
	return "", false
}

func classifyType(tx records.Transaction) (enums.TransactionType, bool) {
	return tx.Type, tx.Type.IsValid()
}

func createdAt(tx records.Transaction) time.Time { return tx.CreatedAt }

func magnitude(tx records.Transaction) int64 { return tx.Magnitude() }

// earnedSpent returns the |amount| totals of the earned and spent buckets.
func earnedSpent(txs []records.Transaction) (earned, spent int64) {
	totals := aggregate.ReduceByCategory(txs, classifyFlow, magnitude)
	return totals[flowEarned], totals[flowSpent]
}

func pointsTrend(txs []records.Transaction, now time.Time, horizon int) []PointsTrendPoint {
	return aggregate.BuildTrend(txs, createdAt, now, horizon, func(day aggregate.Window, bucket []records.Transaction) PointsTrendPoint {
		earned, spent := earnedSpent(bucket)
		return PointsTrendPoint{Date: day.Start.Format(aggregate.DateLayout), Earned: earned, Spent: spent}
	})
}

func countTrend[T any](items []T, field func(T) time.Time, now time.Time, horizon int) []CountPoint {
	return aggregate.BuildTrend(items, field, now, horizon, func(day aggregate.Window, bucket []T) CountPoint {
		return CountPoint{Date: day.Start.Format(aggregate.DateLayout), Count: int64(len(bucket))}
	})
}

// roundedMean returns total/n rounded half away from zero, or 0 when n is 0.
func roundedMean(total, n int64) int64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(n)).Round(0).IntPart()
}

// ratio returns num/den rounded to four places, or 0 when den is 0.
func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Round(4).InexactFloat64()
}
