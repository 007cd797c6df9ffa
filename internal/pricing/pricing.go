// Package pricing computes effective product prices after promotions.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PromoPercent parses a promotion label like "20%" or "15" into a percentage.
// Labels that do not parse, or parse to zero or below, yield 0 (no discount).
func PromoPercent(promo *string) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*promo), "%"))
	if raw == "" {
		return decimal.Zero
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil || pct <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(pct)
}

// UnitPrice returns the price after applying the promotion percentage.
// Promotions above 100% are applied as-is, matching the storefront behavior.
func UnitPrice(price decimal.Decimal, promo *string) decimal.Decimal {
	pct := PromoPercent(promo)
	if pct.IsZero() {
		return price.Round(2)
	}
	discount := price.Mul(pct).Div(hundred)
	return price.Sub(discount).Round(2)
}

// Subtotal returns the line total for quantity units at the promoted price.
func Subtotal(price decimal.Decimal, promo *string, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero.Round(2)
	}
	return UnitPrice(price, promo).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
