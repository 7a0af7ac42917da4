package pagination

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single remote page can request.
	MaxLimit = 100
	// DefaultMaxPages bounds how many pages Collect walks before giving up.
	DefaultMaxPages = 50
)

// Params holds page-number pagination inputs.
type Params struct {
	Limit int
	Page  int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps page numbers to the 1-based range.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageFunc fetches one page and reports the total number of rows available remotely.
type PageFunc[T any] func(ctx context.Context, params Params) (items []T, total int, err error)

// Collect walks pages starting at 1 until total rows are gathered or a short page arrives.
// Errors abort the walk and discard partial results. Hitting maxPages before total is
// reached is an error too: callers aggregate the rows and must never see a truncated set.
func Collect[T any](ctx context.Context, limit, maxPages int, fetch PageFunc[T]) ([]T, error) {
	limit = NormalizeLimit(limit)
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	out := make([]T, 0)
	total := 0
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, pageTotal, err := fetch(ctx, Params{Limit: limit, Page: page})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		total = pageTotal
		out = append(out, items...)
		if len(items) < limit || len(out) >= total {
			return out, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "collection exceeds page cap").
		WithDetails(map[string]any{
			"truncated": true,
			"collected": len(out),
			"total":     total,
			"max_pages": maxPages,
		})
}
