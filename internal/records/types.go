package records

import (
	"time"

	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// Transaction is a single points ledger entry. Amount is signed; redemptions are stored negative.
type Transaction struct {
	ID        int64                 `json:"id"`
	UTORid    string                `json:"utorid"`
	Type      enums.TransactionType `json:"type"`
	Amount    int64                 `json:"amount"`
	CreatedAt time.Time             `json:"createdAt"`
	Processed bool                  `json:"processed"`
	Remark    string                `json:"remark,omitempty"`
}

// Magnitude returns |Amount|.
func (t Transaction) Magnitude() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// PendingRedemption reports whether a cashier still has to process the entry.
func (t Transaction) PendingRedemption() bool {
	return t.Type == enums.TransactionRedemption && !t.Processed
}

// Event is a scheduled points event members can RSVP to.
type Event struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Capacity   *int64    `json:"capacity"`
	Published  bool      `json:"published"`
	GuestCount int64     `json:"guestCount"`
}

// HasCapacity reports whether the event declares a positive guest limit.
func (e Event) HasCapacity() bool {
	return e.Capacity != nil && *e.Capacity > 0
}

// Promotion grants bonus points while it is active.
type Promotion struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Type       enums.PromotionType `json:"type"`
	StartTime  time.Time           `json:"startTime"`
	EndTime    time.Time           `json:"endTime"`
	UsageCount int64               `json:"usageCount"`
}

// Status derives the promotion's schedule state at now. Both bounds are inclusive for Active.
func (p Promotion) Status(now time.Time) enums.PromotionStatus {
	switch {
	case p.StartTime.After(now):
		return enums.PromotionStatusUpcoming
	case p.EndTime.Before(now):
		return enums.PromotionStatusExpired
	default:
		return enums.PromotionStatusActive
	}
}

// User is a member account as exposed to managers.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	UTORid    string     `json:"utorid"`
	Points    int64      `json:"points"`
	Verified  bool       `json:"verified"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Page is one page of a remote collection query.
type Page[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// Query carries the filters accepted by the remote collection endpoints.
type Query struct {
	Limit     int                   `json:"limit" validate:"min=1,max=100"`
	Page      int                   `json:"page" validate:"min=1"`
	Type      enums.TransactionType `json:"type,omitempty" validate:"omitempty,oneof=purchase redemption event adjustment transfer"`
	Processed *bool                 `json:"processed,omitempty"`
}

// Bool returns a pointer to v, for optional query filters.
func Bool(v bool) *bool {
	return &v
}

// CashierStats is the remote service's precomputed daily summary for the cashier desk.
type CashierStats struct {
	TodayTransactions         int64 `json:"todayTransactions"`
	TodayPointsIssued         int64 `json:"todayPointsIssued"`
	TodayRedemptionsProcessed int64 `json:"todayRedemptionsProcessed"`
}
