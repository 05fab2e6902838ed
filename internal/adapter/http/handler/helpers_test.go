package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"/funders?offset=50", 50},
		{"/funders?offset=-3", -3},
		{"/funders?offset=fifty", 7},
		{"/funders", 7},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.query, nil)
		if got := parseIntQuery(req, "offset", 7); got != tt.want {
			t.Fatalf("parseIntQuery(%s) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{"invalid address", domain.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized, "expired_token"},
		{"not owner", domain.ErrUnauthorized, http.StatusForbidden, "not_owner"},
		{"ledger not found", domain.ErrLedgerNotFound, http.StatusNotFound, "ledger_not_found"},
		{"index out of range", domain.ErrIndexOutOfRange, http.StatusNotFound, "index_out_of_range"},
		{"already deployed", domain.ErrLedgerAlreadyDeployed, http.StatusConflict, "already_deployed"},
		{"reentrant call", domain.ErrReentrantCall, http.StatusConflict, "reentrant_call"},
		{"below minimum", fmt.Errorf("%w: converted 1", domain.ErrInsufficientContribution), http.StatusUnprocessableEntity, "below_minimum"},
		{"transfer failed", fmt.Errorf("%w: custody returned 500", domain.ErrTransferFailed), http.StatusBadGateway, "transfer_failed"},
		{"oracle down", domain.ErrOracleUnavailable, http.StatusServiceUnavailable, "oracle_unavailable"},
		{"ledger busy", domain.ErrLedgerBusy, http.StatusServiceUnavailable, "ledger_busy"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Fatalf("classify() = %d %q, want %d %q", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, "failed to fund", fmt.Errorf("%w: converted 10, minimum 50", domain.ErrInsufficientContribution))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "failed to fund" || resp.Code != "below_minimum" {
		t.Fatalf("unexpected error response %+v", resp)
	}
	if resp.Message == "" {
		t.Fatalf("expected domain detail in message")
	}
}

func TestWriteDomainErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, "failed to withdraw", errors.New("pq: relation funders does not exist"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Message != "" || resp.Code != "internal" {
		t.Fatalf("expected internal error without detail, got %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusBadRequest, "invalid funder index", "strconv.Atoi: parsing \"x\"")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "invalid funder index" || resp.Code != "" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestCallerOr(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdraw", nil)
	if got := callerOr(req, "0xbody"); got != "0xbody" {
		t.Fatalf("expected body caller without auth, got %s", got)
	}

	req = req.WithContext(middleware.WithCaller(req.Context(), "0xtoken"))
	if got := callerOr(req, "0xbody"); got != "0xtoken" {
		t.Fatalf("expected token caller to win, got %s", got)
	}
}
