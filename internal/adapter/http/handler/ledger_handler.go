package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// FundingService is the part of the funding use case exposed over HTTP.
type FundingService interface {
	Fund(ctx context.Context, input usecase.FundInput) (*domain.Deposit, error)
	Withdraw(ctx context.Context, caller string) (*domain.Withdrawal, error)
	CheaperWithdraw(ctx context.Context, caller string) (*domain.Withdrawal, error)
	GetLedger(ctx context.Context) (*domain.Ledger, error)
	GetOwner(ctx context.Context) (string, error)
	GetPriceFeed(ctx context.Context) (string, error)
	GetAddressToAmountFunded(ctx context.Context, funder string) (decimal.Decimal, error)
	GetFunder(ctx context.Context, index int) (string, error)
	GetContributorCount(ctx context.Context) (int, error)
	ListFunders(ctx context.Context, input usecase.ListFundersInput) ([]string, error)
	GetConversionRate(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, domain.PriceQuote, error)
	MinimumReference() decimal.Decimal
}

// ConsistencyService reports whether held balance matches contributions.
type ConsistencyService interface {
	Report(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles funding ledger requests.
type LedgerHandler struct {
	fundingUC     FundingService
	consistencyUC ConsistencyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(fundingUC FundingService, consistencyUC ConsistencyService) *LedgerHandler {
	return &LedgerHandler{
		fundingUC:     fundingUC,
		consistencyUC: consistencyUC,
	}
}

// Fund records a deposit.
func (h *LedgerHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	input.Funder = callerOr(r, input.Funder)

	deposit, err := h.fundingUC.Fund(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to fund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DepositFromDomain(deposit))
}

// Withdraw sends the pool to the owner, resetting funders one by one.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.withdraw(w, r, h.fundingUC.Withdraw)
}

// CheaperWithdraw sends the pool to the owner from a funder list snapshot.
func (h *LedgerHandler) CheaperWithdraw(w http.ResponseWriter, r *http.Request) {
	h.withdraw(w, r, h.fundingUC.CheaperWithdraw)
}

func (h *LedgerHandler) withdraw(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*domain.Withdrawal, error)) {
	var req dto.WithdrawRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	caller := callerOr(r, req.Caller)
	if caller == "" {
		writeError(w, http.StatusBadRequest, "missing caller", "")
		return
	}

	withdrawal, err := fn(r.Context(), caller)
	if err != nil {
		writeDomainError(w, "failed to withdraw", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(withdrawal))
}

// GetLedger returns the ledger snapshot.
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.fundingUC.GetLedger(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// GetOwner returns the ledger owner.
func (h *LedgerHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.fundingUC.GetOwner(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get owner", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AddressResponse{Address: owner})
}

// GetPriceFeed returns the price feed reference.
func (h *LedgerHandler) GetPriceFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.fundingUC.GetPriceFeed(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get price feed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AddressResponse{Address: feed})
}

// ListFunders lists funders in deposit order.
func (h *LedgerHandler) ListFunders(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	funders, err := h.fundingUC.ListFunders(r.Context(), usecase.ListFundersInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list funders", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundersResponse{
		Funders: funders,
		Limit:   limit,
		Offset:  offset,
	})
}

// CountFunders returns the funder list length.
func (h *LedgerHandler) CountFunders(w http.ResponseWriter, r *http.Request) {
	count, err := h.fundingUC.GetContributorCount(r.Context())
	if err != nil {
		writeDomainError(w, "failed to count funders", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

// GetFunder returns the funder at the given index.
func (h *LedgerHandler) GetFunder(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid funder index", err.Error())
		return
	}

	funder, err := h.fundingUC.GetFunder(r.Context(), index)
	if err != nil {
		writeDomainError(w, "failed to get funder", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FunderResponse{Index: index, Funder: funder})
}

// GetContribution returns the recorded contribution of an address.
func (h *LedgerHandler) GetContribution(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	amount, err := h.fundingUC.GetAddressToAmountFunded(r.Context(), address)
	if err != nil {
		writeDomainError(w, "failed to get contribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionResponse{
		Funder: domain.NormalizeAddress(address),
		Amount: amount,
	})
}

// GetConversion converts a native amount with the live quote.
func (h *LedgerHandler) GetConversion(w http.ResponseWriter, r *http.Request) {
	amount, err := domain.ParseNativeAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	converted, quote, err := h.fundingUC.GetConversionRate(r.Context(), amount)
	if err != nil {
		writeDomainError(w, "failed to convert amount", err)
		return
	}

	minimum := h.fundingUC.MinimumReference()
	writeJSON(w, http.StatusOK, dto.ConversionResponse{
		Amount:          amount,
		ReferenceAmount: converted,
		Price:           quote.Price,
		Decimals:        quote.Decimals,
		Minimum:         minimum,
		MeetsMinimum:    domain.MeetsMinimum(converted, minimum),
	})
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.consistencyUC.Report(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLedgerNotFound) {
			writeError(w, http.StatusNotFound, "failed to check consistency", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromReport(report))
}
