// Package custody moves native value out of the ledger to recipients.
package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// Receiver runs when an address receives value, before the vault credits it.
// A non-nil error rejects the transfer.
type Receiver func(ctx context.Context, amount decimal.Decimal) error

// Vault is an in-process custody book holding native balances per address.
type Vault struct {
	mu        sync.Mutex
	balances  map[string]decimal.Decimal
	receivers map[string]Receiver
	paid      map[string]struct{}
	err       error
}

// NewVault creates an empty Vault.
func NewVault() *Vault {
	return &Vault{
		balances:  make(map[string]decimal.Decimal),
		receivers: make(map[string]Receiver),
		paid:      make(map[string]struct{}),
	}
}

// Transfer credits amount to the address to. A payoutID that was already
// paid is acknowledged without moving value again; an empty one is never
// deduplicated.
func (v *Vault) Transfer(ctx context.Context, payoutID, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to = domain.NormalizeAddress(to)

	v.mu.Lock()
	_, done := v.paid[payoutID]
	failure := v.err
	receiver := v.receivers[to]
	v.mu.Unlock()

	if payoutID != "" && done {
		return nil
	}

	if failure != nil {
		return failure
	}

	// The receiver runs unlocked so it may call back into the ledger.
	if receiver != nil {
		if err := receiver(ctx, amount); err != nil {
			return fmt.Errorf("receiver %s rejected transfer: %w", to, err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[to] = v.balances[to].Add(amount)
	if payoutID != "" {
		v.paid[payoutID] = struct{}{}
	}

	return nil
}

// BalanceOf returns the value received by addr.
func (v *Vault) BalanceOf(addr string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[domain.NormalizeAddress(addr)]
}

// SetReceiver installs code that runs whenever addr receives value.
func (v *Vault) SetReceiver(addr string, r Receiver) {
	v.mu.Lock()
	defer v.mu.Unlock()

	addr = domain.NormalizeAddress(addr)
	if r == nil {
		delete(v.receivers, addr)
		return
	}
	v.receivers[addr] = r
}

// Fail makes every following transfer return err until called with nil.
func (v *Vault) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}
