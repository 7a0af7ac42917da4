package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/pointsdash/internal/records"
)

// Fetcher is the remote record service as seen by the engine. Each call returns
// one page; retries, caching and credentials are the implementation's concern.
type Fetcher interface {
	ListMyTransactions(ctx context.Context, q records.Query) (records.Page[records.Transaction], error)
	ListTransactions(ctx context.Context, q records.Query) (records.Page[records.Transaction], error)
	ListEvents(ctx context.Context, q records.Query) (records.Page[records.Event], error)
	ListPromotions(ctx context.Context, q records.Query) (records.Page[records.Promotion], error)
	ListUsers(ctx context.Context, q records.Query) (records.Page[records.User], error)
	CashierStats(ctx context.Context) (records.CashierStats, error)
}

// Computer produces a snapshot for a request.
type Computer interface {
	Compute(ctx context.Context, req Request) (*Snapshot, error)
}

// FacetComputer builds a single manager facet on demand.
type FacetComputer interface {
	ComputeFacet(ctx context.Context, facet Facet, now time.Time) (*Snapshot, error)
}
