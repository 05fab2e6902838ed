package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

func TestWithdrawalFromDomain_EmptyContributors(t *testing.T) {
	resp := WithdrawalFromDomain(&domain.Withdrawal{
		LedgerID: "fundme",
		Owner:    "0xowner",
		Amount:   decimal.Zero,
		PayoutID: "payout-1",
	})

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	contributors, ok := decoded["contributors"].([]any)
	if !ok || len(contributors) != 0 {
		t.Fatalf("expected empty contributors array, got %v", decoded["contributors"])
	}
	if decoded["payout_id"] != "payout-1" {
		t.Fatalf("expected payout_id, got %v", decoded["payout_id"])
	}
}

func TestDepositFromDomain(t *testing.T) {
	now := time.Now().UTC()
	d := &domain.Deposit{
		LedgerID:        "fundme",
		Funder:          "0xfunder",
		Amount:          decimal.RequireFromString("25000000000000000"),
		ReferenceAmount: decimal.RequireFromString("50000000000000000000"),
		Contribution:    decimal.RequireFromString("50000000000000000"),
		FunderIndex:     1,
		CreatedAt:       now,
	}

	resp := DepositFromDomain(d)

	if resp.Funder != d.Funder || resp.FunderIndex != 1 || !resp.CreatedAt.Equal(now) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Contribution.Equal(d.Contribution) || !resp.ReferenceAmount.Equal(d.ReferenceAmount) {
		t.Fatalf("amounts not carried over: %+v", resp)
	}
}

func TestConsistencyFromReport(t *testing.T) {
	tests := []struct {
		name       string
		consistent bool
		wantStatus string
	}{
		{name: "consistent", consistent: true, wantStatus: "consistent"},
		{name: "inconsistent", consistent: false, wantStatus: "inconsistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ConsistencyFromReport(&usecase.ConsistencyReport{
				HeldBalance:        decimal.NewFromInt(10),
				TotalContributions: decimal.NewFromInt(10),
				Consistent:         tt.consistent,
			})

			if resp.Status != tt.wantStatus || resp.Consistent != tt.consistent {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}
