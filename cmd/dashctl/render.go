package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/internal/display"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

type headline struct {
	label string
	value string
}

func count(v int64) string {
	return strconv.FormatInt(v, 10)
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func headlines(s *analytics.Snapshot) []headline {
	var out []headline
	if a := s.PointsActivity; a != nil {
		out = append(out,
			headline{"Earned this week", count(a.EarnedWeek)},
			headline{"Spent this week", count(a.SpentWeek)},
			headline{"Net this week", count(a.NetWeek)},
			headline{"Net this month", count(a.NetMonth)},
		)
	}
	if i := s.TransactionInsights; i != nil {
		out = append(out,
			headline{"Transactions this month", count(i.MonthCount)},
			headline{"Average value", count(i.AverageValue)},
			headline{"Most common type", i.MostCommonType.String()},
		)
	}
	if e := s.Engagement; e != nil {
		out = append(out,
			headline{"Upcoming events", count(e.UpcomingEvents)},
			headline{"Active promotions", count(e.ActivePromotions)},
		)
	}
	if c := s.Cashier; c != nil {
		if c.Stats != nil {
			out = append(out,
				headline{"Transactions today", count(c.Stats.TodayTransactions)},
				headline{"Points issued today", count(c.Stats.TodayPointsIssued)},
				headline{"Redemptions processed today", count(c.Stats.TodayRedemptionsProcessed)},
			)
		}
		out = append(out, headline{"Pending redemptions", count(c.PendingRedemptions)})
	}
	if o := s.Overview; o != nil {
		out = append(out,
			headline{"Users", count(o.TotalUsers)},
			headline{"Transactions", count(o.TotalTransactions)},
			headline{"Events", count(o.TotalEvents)},
			headline{"Promotions", count(o.TotalPromotions)},
		)
	}
	if u := s.Users; u != nil {
		out = append(out, headline{"Verification rate", percent(u.VerificationRate)})
	}
	if e := s.Events; e != nil {
		out = append(out, headline{"Average fill rate", percent(e.AverageFillRate)})
	}
	if f := s.Financial; f != nil {
		out = append(out,
			headline{"Points in circulation", count(f.NetCirculation)},
			headline{"Redemption rate", percent(f.RedemptionRate)},
		)
	}
	return out
}

// render prints headlines then tables. A nil anim prints final values directly.
func render(ctx context.Context, w io.Writer, s *analytics.Snapshot, sortState *display.SortState, anim *display.Animation) error {
	fmt.Fprintf(w, "%s dashboard (generation %d, %s)\n\n", s.Role, s.Generation, s.GeneratedAt.Format(time.RFC3339))

	for _, h := range headlines(s) {
		if anim == nil {
			fmt.Fprintf(w, "%-30s %s\n", h.label, h.value)
			continue
		}
		label := h.label
		if err := anim.Play(ctx, h.value, func(frame string) {
			fmt.Fprintf(w, "\r%-30s %s", label, frame)
		}); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	for _, failure := range s.Errors {
		fmt.Fprintf(w, "! %s unavailable: %s\n", failure.Facet, failure.Message)
	}

	if sortState != nil {
		fmt.Fprintf(w, "\nsorted by %s %s\n", sortState.Key, sortState.Direction)
	}
	return renderTables(w, s)
}

func renderTables(w io.Writer, s *analytics.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if s.Cashier != nil && len(s.Cashier.RecentTransactions) > 0 {
		fmt.Fprintln(tw, "\nRECENT TRANSACTIONS")
		fmt.Fprintln(tw, "ID\tUTORID\tTYPE\tAMOUNT\tCREATED")
		for _, tx := range s.Cashier.RecentTransactions {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", tx.ID, tx.UTORid, tx.Type, tx.Amount, tx.CreatedAt.Format(time.RFC3339))
		}
	}
	if s.Users != nil && len(s.Users.TopByPoints) > 0 {
		fmt.Fprintln(tw, "\nTOP USERS BY POINTS")
		fmt.Fprintln(tw, "NAME\tUTORID\tPOINTS\tTRANSACTIONS")
		for _, u := range s.Users.TopByPoints {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", u.Name, u.UTORid, u.Points, u.TransactionCount)
		}
	}
	if s.Events != nil && len(s.Events.MostPopular) > 0 {
		fmt.Fprintln(tw, "\nMOST POPULAR EVENTS")
		fmt.Fprintln(tw, "NAME\tGUESTS\tCAPACITY\tSTARTS")
		for _, e := range s.Events.MostPopular {
			capacity := "-"
			if e.HasCapacity() {
				capacity = count(*e.Capacity)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.GuestCount, capacity, e.StartTime.Format(time.RFC3339))
		}
	}
	if s.Promotions != nil && len(s.Promotions.MostEffective) > 0 {
		fmt.Fprintln(tw, "\nMOST EFFECTIVE PROMOTIONS")
		fmt.Fprintln(tw, "NAME\tTYPE\tUSES\tSTATUS")
		for _, p := range s.Promotions.MostEffective {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Type, p.UsageCount, p.Status(s.GeneratedAt))
		}
	}
	if s.Role == enums.RoleRegular && s.PointsActivity != nil {
		fmt.Fprintln(tw, "\nLAST 7 DAYS")
		fmt.Fprintln(tw, "DATE\tEARNED\tSPENT")
		trend := s.PointsActivity.Trend
		for _, p := range trend[max(0, len(trend)-7):] {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", p.Date, p.Earned, p.Spent)
		}
	}
	return tw.Flush()
}
