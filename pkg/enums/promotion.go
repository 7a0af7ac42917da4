package enums

import "fmt"

// PromotionType distinguishes automatically applied promotions from one-time codes.
type PromotionType string

const (
	PromotionAutomatic PromotionType = "automatic"
	PromotionOneTime   PromotionType = "onetime"
)

var validPromotionTypes = []PromotionType{
	PromotionAutomatic,
	PromotionOneTime,
}

// IsValid reports whether the value is a known PromotionType.
func (p PromotionType) IsValid() bool {
	for _, candidate := range validPromotionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionType converts raw input into a PromotionType.
func ParsePromotionType(value string) (PromotionType, error) {
	for _, candidate := range validPromotionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion type %q", value)
}

// PromotionStatus is derived from a promotion's schedule relative to now.
type PromotionStatus string

const (
	PromotionStatusActive   PromotionStatus = "active"
	PromotionStatusUpcoming PromotionStatus = "upcoming"
	PromotionStatusExpired  PromotionStatus = "expired"
)
