package enums

import "fmt"

// TransactionType discriminates points ledger entries.
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionRedemption TransactionType = "redemption"
	TransactionEvent      TransactionType = "event"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionTransfer   TransactionType = "transfer"
)

var validTransactionTypes = []TransactionType{
	TransactionPurchase,
	TransactionRedemption,
	TransactionEvent,
	TransactionAdjustment,
	TransactionTransfer,
}

// TransactionTypes returns the known types in canonical order.
func TransactionTypes() []TransactionType {
	out := make([]TransactionType, len(validTransactionTypes))
	copy(out, validTransactionTypes)
	return out
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known transaction type.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Earns reports whether the type credits points to the member.
func (t TransactionType) Earns() bool {
	switch t {
	case TransactionPurchase, TransactionEvent, TransactionAdjustment:
		return true
	}
	return false
}

// Spends reports whether the type deducts points from the member.
func (t TransactionType) Spends() bool {
	return t == TransactionRedemption
}

// ParseTransactionType converts the raw string to a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
