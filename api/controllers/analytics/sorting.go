package analytics

import (
	"slices"

	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/internal/display"
	"github.com/angelmondragon/pointsdash/internal/records"
)

var transactionColumns = map[string]display.Column[records.Transaction]{
	"id":        {Accessor: func(t records.Transaction) any { return t.ID }},
	"utorid":    {Accessor: func(t records.Transaction) any { return t.UTORid }},
	"type":      {Accessor: func(t records.Transaction) any { return t.Type.String() }},
	"amount":    {Accessor: func(t records.Transaction) any { return t.Amount }},
	"createdAt": {Accessor: func(t records.Transaction) any { return t.CreatedAt }},
}

var userRankColumns = map[string]display.Column[analytics.UserRank]{
	"id":               {Accessor: func(u analytics.UserRank) any { return u.ID }},
	"name":             {Accessor: func(u analytics.UserRank) any { return u.Name }},
	"utorid":           {Accessor: func(u analytics.UserRank) any { return u.UTORid }},
	"points":           {Accessor: func(u analytics.UserRank) any { return u.Points }},
	"transactionCount": {Accessor: func(u analytics.UserRank) any { return u.TransactionCount }},
}

var eventColumns = map[string]display.Column[records.Event]{
	"id":         {Accessor: func(e records.Event) any { return e.ID }},
	"name":       {Accessor: func(e records.Event) any { return e.Name }},
	"startTime":  {Accessor: func(e records.Event) any { return e.StartTime }},
	"guestCount": {Accessor: func(e records.Event) any { return e.GuestCount }},
	"capacity": {Accessor: func(e records.Event) any {
		if e.Capacity == nil {
			return nil
		}
		return *e.Capacity
	}},
}

var promotionColumns = map[string]display.Column[records.Promotion]{
	"id":         {Accessor: func(p records.Promotion) any { return p.ID }},
	"name":       {Accessor: func(p records.Promotion) any { return p.Name }},
	"type":       {Accessor: func(p records.Promotion) any { return p.Type }},
	"startTime":  {Accessor: func(p records.Promotion) any { return p.StartTime }},
	"endTime":    {Accessor: func(p records.Promotion) any { return p.EndTime }},
	"usageCount": {Accessor: func(p records.Promotion) any { return p.UsageCount }},
}

func knownSortColumn(key string) bool {
	_, a := transactionColumns[key]
	_, b := userRankColumns[key]
	_, c := eventColumns[key]
	_, d := promotionColumns[key]
	return a || b || c || d
}

func sortColumnNames() []string {
	var names []string
	for _, keys := range [][]string{
		display.NewSorter(transactionColumns).Keys(),
		display.NewSorter(userRankColumns).Keys(),
		display.NewSorter(eventColumns).Keys(),
		display.NewSorter(promotionColumns).Keys(),
	} {
		names = append(names, keys...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func sortRows[T any](columns map[string]display.Column[T], rows []T, key string, dir display.Direction) []T {
	if _, ok := columns[key]; !ok {
		return rows
	}
	sorter := display.NewSorter(columns)
	if _, err := sorter.Set(key, dir); err != nil {
		return rows
	}
	return sorter.Sort(rows)
}

// sortSnapshot re-orders the list sections of s that carry key. The committed
// snapshot is shared with the tracker, so sorted sections are copies.
func sortSnapshot(s *analytics.Snapshot, key string, dir display.Direction) (*analytics.Snapshot, *display.SortState) {
	if s == nil || key == "" {
		return s, nil
	}
	out := *s
	if s.Cashier != nil {
		cashier := *s.Cashier
		cashier.RecentTransactions = sortRows(transactionColumns, cashier.RecentTransactions, key, dir)
		out.Cashier = &cashier
	}
	if s.Users != nil {
		users := *s.Users
		users.TopByPoints = sortRows(userRankColumns, users.TopByPoints, key, dir)
		users.TopByTransactionCount = sortRows(userRankColumns, users.TopByTransactionCount, key, dir)
		out.Users = &users
	}
	if s.Events != nil {
		events := *s.Events
		events.MostPopular = sortRows(eventColumns, events.MostPopular, key, dir)
		out.Events = &events
	}
	if s.Promotions != nil {
		promotions := *s.Promotions
		promotions.MostEffective = sortRows(promotionColumns, promotions.MostEffective, key, dir)
		out.Promotions = &promotions
	}
	return &out, &display.SortState{Key: key, Direction: dir}
}
