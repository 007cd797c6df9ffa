package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestPromoPercent(t *testing.T) {
	tests := []struct {
		name  string
		promo *string
		want  string
	}{
		{name: "nil promo", promo: nil, want: "0"},
		{name: "percent suffix", promo: strptr("20%"), want: "20"},
		{name: "bare number", promo: strptr("15"), want: "15"},
		{name: "whitespace", promo: strptr("  8% "), want: "8"},
		{name: "fractional", promo: strptr("12.5%"), want: "12.5"},
		{name: "garbage", promo: strptr("soon"), want: "0"},
		{name: "zero", promo: strptr("0%"), want: "0"},
		{name: "negative", promo: strptr("-10%"), want: "0"},
		{name: "empty", promo: strptr(""), want: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PromoPercent(tc.promo)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestUnitPrice(t *testing.T) {
	base := decimal.RequireFromString("100")

	assert.Equal(t, "80", UnitPrice(base, strptr("20%")).String())
	assert.Equal(t, "100", UnitPrice(base, nil).String())
	assert.Equal(t, "100", UnitPrice(base, strptr("not-a-promo")).String())
	assert.Equal(t, "92", UnitPrice(base, strptr("8%")).String())

	// Over-100 promotions are not clamped; the result goes negative.
	assert.Equal(t, "-50", UnitPrice(base, strptr("150%")).String())
}

func TestUnitPriceRoundsToCents(t *testing.T) {
	got := UnitPrice(decimal.RequireFromString("9.99"), strptr("33%"))
	assert.Equal(t, "6.69", got.String())
}

func TestSubtotal(t *testing.T) {
	base := decimal.RequireFromString("100")

	got := Subtotal(base, strptr("20%"), 3)
	assert.Equal(t, "240", got.String())

	assert.True(t, Subtotal(base, nil, 0).IsZero())
	assert.True(t, Subtotal(base, nil, -2).IsZero())
}
