package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestNumericRoundTrip(t *testing.T) {
	tests := []string{
		"0",
		"1",
		"60000000000000000000",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935",
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt)
		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Fatalf("round trip of %s produced %s", tt, got)
		}
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	if got := numericToDecimal(pgtype.Numeric{}); !got.IsZero() {
		t.Fatalf("expected zero for NULL numeric, got %s", got)
	}
}
