package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/internal/display"
	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

var renderNow = time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

func labels(items []headline) map[string]string {
	out := make(map[string]string, len(items))
	for _, h := range items {
		out[h.label] = h.value
	}
	return out
}

func TestHeadlinesRegular(t *testing.T) {
	s := &analytics.Snapshot{
		Role:                enums.RoleRegular,
		PointsActivity:      &analytics.PointsActivity{EarnedWeek: 1200, SpentWeek: 300, NetWeek: 900, NetMonth: 2500},
		TransactionInsights: &analytics.TransactionInsights{MonthCount: 7, AverageValue: 214, MostCommonType: enums.TransactionPurchase},
		Engagement:          &analytics.Engagement{UpcomingEvents: 2, ActivePromotions: 3},
	}

	got := labels(headlines(s))
	assert.Equal(t, "1200", got["Earned this week"])
	assert.Equal(t, "900", got["Net this week"])
	assert.Equal(t, "purchase", got["Most common type"])
	assert.Equal(t, "3", got["Active promotions"])
	assert.NotContains(t, got, "Pending redemptions")
}

func TestHeadlinesManagerRates(t *testing.T) {
	s := &analytics.Snapshot{
		Role:      enums.RoleManager,
		Overview:  &analytics.Overview{TotalUsers: 40},
		Users:     &analytics.UserAnalytics{VerificationRate: 0.755},
		Financial: &analytics.FinancialAnalytics{NetCirculation: 1000, RedemptionRate: 0.25},
	}

	got := labels(headlines(s))
	assert.Equal(t, "40", got["Users"])
	assert.Equal(t, "75.5%", got["Verification rate"])
	assert.Equal(t, "25.0%", got["Redemption rate"])
	assert.NotContains(t, got, "Average fill rate")
}

func TestRenderCashierTables(t *testing.T) {
	s := &analytics.Snapshot{
		Role:        enums.RoleCashier,
		GeneratedAt: renderNow,
		Generation:  3,
		Cashier: &analytics.CashierView{
			Stats:              &records.CashierStats{TodayTransactions: 4},
			PendingRedemptions: 2,
			RecentTransactions: []records.Transaction{
				{ID: 11, UTORid: "alice01", Type: enums.TransactionPurchase, Amount: 80, CreatedAt: renderNow},
			},
		},
		Errors: []analytics.FacetFailure{{Facet: analytics.FacetCashier, Message: "stats unavailable"}},
	}

	var buf bytes.Buffer
	require.NoError(t, render(context.Background(), &buf, s, &display.SortState{Key: "amount", Direction: display.Descending}, nil))

	out := buf.String()
	assert.Contains(t, out, "cashier dashboard (generation 3")
	assert.Contains(t, out, "Pending redemptions")
	assert.Contains(t, out, "RECENT TRANSACTIONS")
	assert.Contains(t, out, "alice01")
	assert.Contains(t, out, "! cashier unavailable: stats unavailable")
	assert.Contains(t, out, "sorted by amount desc")
}

func TestRenderAnimatedEndsOnTarget(t *testing.T) {
	s := &analytics.Snapshot{
		Role:     enums.RoleManager,
		Overview: &analytics.Overview{TotalUsers: 1500},
	}

	var buf bytes.Buffer
	anim := display.Animation{Duration: 20 * time.Millisecond, FrameInterval: 5 * time.Millisecond, Ease: display.Linear}
	require.NoError(t, render(context.Background(), &buf, s, nil, &anim))
	assert.Contains(t, buf.String(), "1500\n")
}

func TestFetchSnapshotSendsBearerAndSort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dashboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer, got %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != "points" {
			t.Errorf("expected sort=points, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"role":"manager","generatedAt":"2025-04-15T12:00:00Z","generation":2},"meta":{"sort":{"key":"points","direction":"desc"}}}`))
	}))
	defer srv.Close()

	snapshot, state, err := fetchSnapshot(context.Background(), srv.Client(), options{addr: srv.URL, token: "tok", sort: "points", dir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleManager, snapshot.Role)
	assert.Equal(t, uint64(2), snapshot.Generation)
	require.NotNil(t, state)
	assert.Equal(t, "points", state.Key)
}

func TestFetchSnapshotSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dashboard/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no dashboard computed yet"}}`))
	}))
	defer srv.Close()

	_, _, err := fetchSnapshot(context.Background(), srv.Client(), options{addr: srv.URL, token: "tok", latest: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dashboard computed yet")
}

func TestFetchSnapshotRequiresToken(t *testing.T) {
	_, _, err := fetchSnapshot(context.Background(), http.DefaultClient, options{addr: "http://localhost"})
	assert.Error(t, err)
}
