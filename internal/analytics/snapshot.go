package analytics

import (
	"time"

	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// Facet names a section of a Snapshot. The values are the JSON keys the UI reads.
type Facet string

const (
	FacetPointsActivity      Facet = "pointsActivity"
	FacetTransactionInsights Facet = "transactionInsights"
	FacetEngagement          Facet = "engagement"
	FacetCashier             Facet = "cashier"
	FacetOverview            Facet = "overview"
	FacetUsers               Facet = "users"
	FacetTransactions        Facet = "transactions"
	FacetEvents              Facet = "events"
	FacetPromotions          Facet = "promotions"
	FacetFinancial           Facet = "financial"
)

// ManagerFacets lists the manager fan-out in render order.
var ManagerFacets = []Facet{
	FacetOverview,
	FacetUsers,
	FacetTransactions,
	FacetEvents,
	FacetPromotions,
	FacetFinancial,
}

// Snapshot is the role-shaped aggregate served for one dashboard render.
// Facets that do not apply to the role, or that failed under best-effort joins, are nil.
type Snapshot struct {
	Role        enums.Role `json:"role"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Generation  uint64     `json:"generation,omitempty"`

	PointsActivity      *PointsActivity      `json:"pointsActivity,omitempty"`
	TransactionInsights *TransactionInsights `json:"transactionInsights,omitempty"`
	Engagement          *Engagement          `json:"engagement,omitempty"`

	Cashier *CashierView `json:"cashier,omitempty"`

	Overview     *Overview             `json:"overview,omitempty"`
	Users        *UserAnalytics        `json:"users,omitempty"`
	Transactions *TransactionAnalytics `json:"transactions,omitempty"`
	Events       *EventAnalytics       `json:"events,omitempty"`
	Promotions   *PromotionAnalytics   `json:"promotions,omitempty"`
	Financial    *FinancialAnalytics   `json:"financial,omitempty"`

	Errors []FacetFailure `json:"errors,omitempty"`
}

// FacetFailure reports a facet dropped from a best-effort snapshot.
type FacetFailure struct {
	Facet   Facet  `json:"facet"`
	Message string `json:"message"`
}

type PointsTrendPoint struct {
	Date   string `json:"date"`
	Earned int64  `json:"earned"`
	Spent  int64  `json:"spent"`
}

type CountPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type PointsActivity struct {
	EarnedWeek  int64              `json:"earnedWeek"`
	SpentWeek   int64              `json:"spentWeek"`
	NetWeek     int64              `json:"netWeek"`
	EarnedMonth int64              `json:"earnedMonth"`
	SpentMonth  int64              `json:"spentMonth"`
	NetMonth    int64              `json:"netMonth"`
	Trend       []PointsTrendPoint `json:"trend"`
}

type TransactionInsights struct {
	MonthCount     int64                 `json:"monthCount"`
	AverageValue   int64                 `json:"averageValue"`
	MostCommonType enums.TransactionType `json:"mostCommonType"`
}

type Engagement struct {
	UpcomingEvents      int64 `json:"upcomingEvents"`
	ActivePromotions    int64 `json:"activePromotions"`
	EventParticipations int64 `json:"eventParticipations"`
}

// CashierView combines the remote daily stats with the locally owned counts.
type CashierView struct {
	Stats              *records.CashierStats `json:"stats,omitempty"`
	PendingRedemptions int64                 `json:"pendingRedemptions"`
	RecentTransactions []records.Transaction `json:"recentTransactions"`
}

type Overview struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalTransactions int64 `json:"totalTransactions"`
	TotalEvents       int64 `json:"totalEvents"`
	TotalPromotions   int64 `json:"totalPromotions"`
}

// UserRank is a row in a top-users list.
type UserRank struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	UTORid           string `json:"utorid"`
	Points           int64  `json:"points"`
	TransactionCount int64  `json:"transactionCount"`
}

type UserAnalytics struct {
	Total                 int64        `json:"total"`
	Verified              int64        `json:"verified"`
	Unverified            int64        `json:"unverified"`
	VerificationRate      float64      `json:"verificationRate"`
	AveragePoints         int64        `json:"averagePoints"`
	TopByPoints           []UserRank   `json:"topByPoints"`
	TopByTransactionCount []UserRank   `json:"topByTransactionCount"`
	Growth                []CountPoint `json:"growth"`
}

type TransactionAnalytics struct {
	Total         int64                           `json:"total"`
	ByType        map[enums.TransactionType]int64 `json:"byType"`
	VolumeByType  map[enums.TransactionType]int64 `json:"volumeByType"`
	Volume        []CountPoint                    `json:"volume"`
	AverageAmount int64                           `json:"averageAmount"`
}

type EventAnalytics struct {
	Total           int64           `json:"total"`
	Upcoming        int64           `json:"upcoming"`
	Ongoing         int64           `json:"ongoing"`
	Past            int64           `json:"past"`
	Published       int64           `json:"published"`
	TotalGuests     int64           `json:"totalGuests"`
	AverageFillRate float64         `json:"averageFillRate"`
	MostPopular     []records.Event `json:"mostPopular"`
}

type PromotionAnalytics struct {
	Total         int64                         `json:"total"`
	Active        int64                         `json:"active"`
	Upcoming      int64                         `json:"upcoming"`
	Expired       int64                         `json:"expired"`
	ByType        map[enums.PromotionType]int64 `json:"byType"`
	MostEffective []records.Promotion           `json:"mostEffective"`
}

type FinancialAnalytics struct {
	PointsIssued   int64              `json:"pointsIssued"`
	PointsRedeemed int64              `json:"pointsRedeemed"`
	NetCirculation int64              `json:"netCirculation"`
	RedemptionRate float64            `json:"redemptionRate"`
	Trend          []PointsTrendPoint `json:"trend"`
}
