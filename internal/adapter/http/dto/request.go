package dto

import (
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// FundRequest represents a deposit request. Amount is an integer count of
// the smallest native unit, sent as a string to keep full precision.
type FundRequest struct {
	Funder string `json:"funder"`
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *FundRequest) ToUseCaseInput() (usecase.FundInput, error) {
	amount, err := domain.ParseNativeAmount(r.Amount)
	if err != nil {
		return usecase.FundInput{}, err
	}

	return usecase.FundInput{
		Funder: r.Funder,
		Amount: amount,
	}, nil
}

// WithdrawRequest represents a withdraw request.
type WithdrawRequest struct {
	Caller string `json:"caller"`
}
