package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/domain"
)

// errorStatus pairs a domain error with its HTTP status and a stable code
// clients can switch on.
type errorStatus struct {
	err    error
	status int
	code   string
}

// First match wins.
var errorStatuses = []errorStatus{
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{domain.ErrExpiredToken, http.StatusUnauthorized, "expired_token"},
	{domain.ErrUnauthorized, http.StatusForbidden, "not_owner"},
	{domain.ErrLedgerNotFound, http.StatusNotFound, "ledger_not_found"},
	{domain.ErrIndexOutOfRange, http.StatusNotFound, "index_out_of_range"},
	{domain.ErrLedgerAlreadyDeployed, http.StatusConflict, "already_deployed"},
	{domain.ErrReentrantCall, http.StatusConflict, "reentrant_call"},
	{domain.ErrInsufficientContribution, http.StatusUnprocessableEntity, "below_minimum"},
	{domain.ErrTransferFailed, http.StatusBadGateway, "transfer_failed"},
	{domain.ErrOracleUnavailable, http.StatusServiceUnavailable, "oracle_unavailable"},
	{domain.ErrLedgerBusy, http.StatusServiceUnavailable, "ledger_busy"},
}

func classify(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status, es.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Message: details})
}

// writeDomainError answers with the status and code of err. Errors outside
// the domain set are reported as internal without their text.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := classify(err)

	resp := dto.ErrorResponse{Error: message, Code: code}
	if status != http.StatusInternalServerError {
		resp.Message = err.Error()
	}

	writeJSON(w, status, resp)
}

// parseIntQuery returns defaultValue for a missing or malformed parameter.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	i, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultValue
	}
	return i
}

// callerOr returns the authenticated caller when there is one, otherwise
// the identity supplied in the request body.
func callerOr(r *http.Request, fromBody string) string {
	if caller, ok := middleware.CallerFromContext(r.Context()); ok {
		return caller
	}
	return fromBody
}
