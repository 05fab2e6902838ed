package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxNativeAmount caps a single deposit at 10^12 whole native units.
var MaxNativeAmount = decimal.New(1, 12+NativeDecimals)

var addressRegex = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress lowercases and trims an address.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ValidateAddress validates a 20-byte hex address with 0x prefix.
func ValidateAddress(addr string) error {
	if !addressRegex.MatchString(NormalizeAddress(addr)) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	return nil
}

// ValidateNativeAmount validates a deposit amount in the smallest native unit.
func ValidateNativeAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Floor()) {
		return fmt.Errorf("%w: fractional native units", ErrInvalidAmount)
	}

	if amount.GreaterThan(MaxNativeAmount) {
		return fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, MaxNativeAmount)
	}

	return nil
}

// MaxPageOffset bounds list offsets to what the storage layer can address.
const MaxPageOffset = math.MaxInt32

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	if offset > MaxPageOffset {
		offset = MaxPageOffset
	}

	return limit, offset
}
