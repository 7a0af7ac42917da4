package analytics

import (
	"time"

	"github.com/angelmondragon/pointsdash/internal/analytics/aggregate"
	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// CashierInput holds what the cashier desk is built from. Stats come precomputed
// from the remote service and pass through untouched.
type CashierInput struct {
	Stats              *records.CashierStats
	PendingRedemptions []records.Transaction
	Recent             []records.Transaction
}

// BuildCashier counts unprocessed redemptions and keeps the most recent transactions.
func BuildCashier(in CashierInput, now time.Time, opts Options) *Snapshot {
	opts = opts.withDefaults()

	var pending int64
	for _, tx := range in.PendingRedemptions {
		if tx.PendingRedemption() {
			pending++
		}
	}

	recent := aggregate.TopK(in.Recent, func(tx records.Transaction) int64 {
		return tx.CreatedAt.UnixNano()
	}, opts.RecentLimit)

	return &Snapshot{
		Role:        enums.RoleCashier,
		GeneratedAt: now,
		Cashier: &CashierView{
			Stats:              in.Stats,
			PendingRedemptions: pending,
			RecentTransactions: recent,
		},
	}
}
