package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/catering-app/models"
)

type DiscountKind string

const (
	DiscountPercent   DiscountKind = "percent"
	DiscountCashValue DiscountKind = "cash_value"
)

func ParseDiscountKind(raw string) (DiscountKind, error) {
	switch DiscountKind(raw) {
	case DiscountPercent, DiscountCashValue:
		return DiscountKind(raw), nil
	default:
		return "", &ConfigurationError{Message: fmt.Sprintf("invalid discount kind %q", raw)}
	}
}

// DiscountActive reports whether at falls inside [ValidFrom, ValidTo], both ends inclusive.
func DiscountActive(d *models.Discount, at time.Time) bool {
	if d == nil {
		return false
	}
	return !at.Before(d.ValidFrom) && !at.After(d.ValidTo)
}

// EffectivePrice applies the discount when it is active at the given instant.
// Results are not clamped: a cash value above the base price yields a negative price.
func EffectivePrice(basePrice float64, d *models.Discount, at time.Time) (float64, error) {
	if !DiscountActive(d, at) {
		return basePrice, nil
	}

	kind, err := ParseDiscountKind(d.Kind)
	if err != nil {
		return 0, err
	}
	switch kind {
	case DiscountPercent:
		return basePrice - (basePrice * d.Amount / 100), nil
	default:
		return basePrice - d.Amount, nil
	}
}

// ValidateDiscount guards the write path: the window must be ordered and the amount
// must not push the final price below zero.
func ValidateDiscount(price float64, d *models.Discount) error {
	if _, err := ParseDiscountKind(d.Kind); err != nil {
		return newValidation("discount.type", "must be one of %q, %q", DiscountPercent, DiscountCashValue)
	}
	if d.Amount < 0 {
		return newValidation("discount.amount", "must not be negative")
	}
	if DiscountKind(d.Kind) == DiscountPercent && d.Amount > 100 {
		return newValidation("discount.amount", "percent must be within [0, 100]")
	}
	if DiscountKind(d.Kind) == DiscountCashValue && d.Amount > price {
		return newValidation("discount.amount", "cash value must not exceed the price %.2f", price)
	}
	if d.ValidFrom.After(d.ValidTo) {
		return newValidation("discount.start_datetime", "must not be after end_datetime")
	}
	return nil
}
