package domain

import "errors"

var (
	// Funding errors
	ErrInsufficientContribution = errors.New("contribution below minimum reference amount")
	ErrInvalidAmount            = errors.New("amount must not be negative")
	ErrInvalidAddress           = errors.New("invalid address")

	// Withdrawal errors
	ErrUnauthorized   = errors.New("caller is not the ledger owner")
	ErrTransferFailed = errors.New("native value transfer failed")

	// Query errors
	ErrIndexOutOfRange = errors.New("funder index out of range")

	// Ledger errors
	ErrLedgerNotFound        = errors.New("ledger not found")
	ErrLedgerAlreadyDeployed = errors.New("ledger already deployed with a different owner or price feed")
	ErrReentrantCall         = errors.New("reentrant call into ledger")
	ErrLedgerBusy            = errors.New("ledger is busy with another state change")

	// Outbox errors
	ErrOutboxEventNotFound = errors.New("outbox event not found")

	// Oracle errors
	ErrOracleUnavailable = errors.New("price oracle unavailable")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
