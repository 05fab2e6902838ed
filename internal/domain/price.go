package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the number of decimals of the smallest native denomination.
	NativeDecimals int32 = 18
)

// MinimumReferenceAmount is 50 reference units scaled to native decimals.
var MinimumReferenceAmount = decimal.New(50, NativeDecimals)

// PriceQuote is the price of one whole native unit in the reference
// currency, scaled by 10^Decimals.
type PriceQuote struct {
	Price    decimal.Decimal
	Decimals int32
}

// Normalized returns the quote price scaled to NativeDecimals.
func (q PriceQuote) Normalized() decimal.Decimal {
	return q.Price.Shift(NativeDecimals - q.Decimals).Floor()
}

// ConversionRate converts a native amount to reference-currency units at
// native scale. Fractions are floored. The quote is never a divisor, so a
// zero or negative quote converts to zero.
func ConversionRate(nativeAmount decimal.Decimal, quote PriceQuote) decimal.Decimal {
	price := quote.Normalized()
	if !price.IsPositive() || !nativeAmount.IsPositive() {
		return decimal.Zero
	}

	return nativeAmount.Mul(price).Shift(-NativeDecimals).Floor()
}

// MeetsMinimum reports whether converted reaches the threshold.
func MeetsMinimum(converted, minimum decimal.Decimal) bool {
	return converted.GreaterThanOrEqual(minimum)
}

// NativeFromWhole converts a whole-coin amount like "1.5" to native units.
func NativeFromWhole(whole string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(whole)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, whole)
	}

	return d.Shift(NativeDecimals).Floor(), nil
}

// ParseNativeAmount parses an integer amount of the smallest native unit.
func ParseNativeAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}

	if d.IsNegative() || !d.Equal(d.Floor()) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}

	return d, nil
}
