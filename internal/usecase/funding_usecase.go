package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/metrics"
)

// FundingConfig holds the dependencies of a FundingUseCase.
type FundingConfig struct {
	LedgerID         string
	TxManager        TransactionManager
	LedgerRepo       LedgerRepository
	ContributionRepo ContributionRepository
	FunderRepo       FunderRepository
	OutboxRepo       OutboxRepository
	PriceFeed        PriceFeed
	Transferer       Transferer
	IDGen            IDGenerator
	Retrier          Retrier
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
	MinimumReference decimal.Decimal // Defaults to domain.MinimumReferenceAmount
	LockWait         time.Duration   // Defaults to DefaultLockWait
}

// FundingUseCase is the funding ledger: deposits gated by a converted
// minimum, owner-only withdrawal of the whole pool.
type FundingUseCase struct {
	ledgerID         string
	txManager        TransactionManager
	ledgerRepo       LedgerRepository
	contributionRepo ContributionRepository
	funderRepo       FunderRepository
	outboxRepo       OutboxRepository
	priceFeed        PriceFeed
	transferer       Transferer
	idGen            IDGenerator
	retrier          Retrier
	metrics          *metrics.Metrics
	logger           zerolog.Logger
	minimum          decimal.Decimal

	// sem serializes every state-changing call; waiters give up after lockWait.
	sem      *semaphore.Weighted
	lockWait time.Duration
}

// NewFundingUseCase creates a new FundingUseCase.
func NewFundingUseCase(cfg FundingConfig) *FundingUseCase {
	if cfg.LedgerID == "" {
		cfg.LedgerID = DefaultLedgerID
	}
	if cfg.MinimumReference.IsZero() {
		cfg.MinimumReference = domain.MinimumReferenceAmount
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = DefaultLockWait
	}

	return &FundingUseCase{
		ledgerID:         cfg.LedgerID,
		txManager:        cfg.TxManager,
		ledgerRepo:       cfg.LedgerRepo,
		contributionRepo: cfg.ContributionRepo,
		funderRepo:       cfg.FunderRepo,
		outboxRepo:       cfg.OutboxRepo,
		priceFeed:        cfg.PriceFeed,
		transferer:       cfg.Transferer,
		idGen:            cfg.IDGen,
		retrier:          cfg.Retrier,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger.With().Str("ledger_id", cfg.LedgerID).Logger(),
		minimum:          cfg.MinimumReference,
		sem:              semaphore.NewWeighted(1),
		lockWait:         cfg.LockWait,
	}
}

// acquire takes the state-change slot. A call made from inside a transfer
// callback never waits: with the guarded context it is rejected outright,
// with any other context it times out after lockWait with ErrLedgerBusy.
func (uc *FundingUseCase) acquire(ctx context.Context) (func(), error) {
	if InGuardedCall(ctx) {
		return nil, domain.ErrReentrantCall
	}

	waitCtx, cancel := context.WithTimeout(ctx, uc.lockWait)
	defer cancel()

	if err := uc.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.ErrLedgerBusy
	}

	return func() { uc.sem.Release(1) }, nil
}

// LedgerID returns the ledger this use case operates on.
func (uc *FundingUseCase) LedgerID() string {
	return uc.ledgerID
}

// MinimumReference returns the contribution threshold at native scale.
func (uc *FundingUseCase) MinimumReference() decimal.Decimal {
	return uc.minimum
}

// DeployInput represents input for deploying the ledger.
type DeployInput struct {
	Owner     string
	PriceFeed string
}

// Deploy creates the ledger with an immutable owner and price feed.
// Deploying again with the same values returns the stored ledger.
func (uc *FundingUseCase) Deploy(ctx context.Context, input DeployInput) (*domain.Ledger, error) {
	if err := domain.ValidateAddress(input.Owner); err != nil {
		return nil, err
	}
	if input.PriceFeed == "" {
		input.PriceFeed = uc.priceFeed.Address()
	}

	owner := domain.NormalizeAddress(input.Owner)

	release, err := uc.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := uc.ledgerRepo.GetByID(ctx, uc.ledgerID)
	switch {
	case err == nil:
		if existing.Owner != owner || existing.PriceFeed != input.PriceFeed {
			return nil, domain.ErrLedgerAlreadyDeployed
		}
		return existing, nil
	case !errors.Is(err, domain.ErrLedgerNotFound):
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	ledger := &domain.Ledger{
		ID:        uc.ledgerID,
		Owner:     owner,
		PriceFeed: input.PriceFeed,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.ledgerRepo.Create(txCtx, tx, ledger); err != nil {
		return nil, err
	}

	if err := uc.emit(txCtx, tx, domain.EventTypeLedgerDeployed, map[string]any{
		"ledger_id":  ledger.ID,
		"owner":      ledger.Owner,
		"price_feed": ledger.PriceFeed,
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("owner", owner).Str("price_feed", input.PriceFeed).Msg("ledger deployed")

	return ledger, nil
}

// FundInput represents input for a deposit.
type FundInput struct {
	Funder string
	Amount decimal.Decimal
}

// Fund records a deposit once its converted value reaches the minimum.
// The funder is appended to the funder list on every deposit.
func (uc *FundingUseCase) Fund(ctx context.Context, input FundInput) (*domain.Deposit, error) {
	if InGuardedCall(ctx) {
		return nil, domain.ErrReentrantCall
	}
	if err := domain.ValidateAddress(input.Funder); err != nil {
		return nil, err
	}
	if err := domain.ValidateNativeAmount(input.Amount); err != nil {
		return nil, err
	}

	funder := domain.NormalizeAddress(input.Funder)
	start := time.Now()

	referenceAmount, _, err := uc.convert(ctx, input.Amount)
	if err != nil {
		return nil, err
	}

	if !domain.MeetsMinimum(referenceAmount, uc.minimum) {
		if uc.metrics != nil {
			uc.metrics.ContributionsRejected.WithLabelValues("below_minimum").Inc()
		}
		uc.logger.Debug().
			Str("funder", funder).
			Str("amount", input.Amount.String()).
			Str("reference_amount", referenceAmount.String()).
			Msg("contribution rejected")

		return nil, fmt.Errorf("%w: converted %s, minimum %s", domain.ErrInsufficientContribution, referenceAmount, uc.minimum)
	}

	release, err := uc.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var deposit *domain.Deposit
	err = uc.retry(ctx, func() error {
		var err error
		deposit, err = uc.fund(ctx, funder, input.Amount, referenceAmount)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.FundsReceived.Inc()
		uc.metrics.FundAmount.Observe(input.Amount.Shift(-domain.NativeDecimals).InexactFloat64())
		uc.metrics.FundDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("funder", funder).
		Str("amount", input.Amount.String()).
		Int("funder_index", deposit.FunderIndex).
		Msg("ledger funded")

	return deposit, nil
}

func (uc *FundingUseCase) fund(ctx context.Context, funder string, amount, referenceAmount decimal.Decimal) (*domain.Deposit, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(txCtx, tx, uc.ledgerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	index, err := uc.funderRepo.Append(txCtx, tx, uc.ledgerID, funder)
	if err != nil {
		return nil, err
	}

	contribution, err := uc.contributionRepo.Add(txCtx, tx, uc.ledgerID, funder, amount, now)
	if err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.UpdateBalance(txCtx, tx, uc.ledgerID, ledger.Credit(amount), now); err != nil {
		return nil, err
	}

	event := domain.LedgerFundedEvent{
		LedgerID:        uc.ledgerID,
		Funder:          funder,
		Amount:          amount.String(),
		ReferenceAmount: referenceAmount.String(),
	}
	if err := uc.emit(txCtx, tx, domain.EventTypeLedgerFunded, event.ToPayload(), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &domain.Deposit{
		LedgerID:        uc.ledgerID,
		Funder:          funder,
		Amount:          amount,
		ReferenceAmount: referenceAmount,
		Contribution:    contribution,
		FunderIndex:     index,
		CreatedAt:       now,
	}, nil
}

// Withdraw sends the whole held balance to the owner and resets every
// contribution, reading the funder list entry by entry from storage.
func (uc *FundingUseCase) Withdraw(ctx context.Context, caller string) (*domain.Withdrawal, error) {
	return uc.withdraw(ctx, caller, "withdraw", uc.resetByIndex)
}

// CheaperWithdraw has the same contract as Withdraw but loads the funder
// list into memory once before resetting contributions.
func (uc *FundingUseCase) CheaperWithdraw(ctx context.Context, caller string) (*domain.Withdrawal, error) {
	return uc.withdraw(ctx, caller, "cheaper_withdraw", uc.resetFromSnapshot)
}

type resetFunc func(ctx context.Context, tx Transaction, now time.Time) ([]string, error)

func (uc *FundingUseCase) withdraw(ctx context.Context, caller, variant string, reset resetFunc) (*domain.Withdrawal, error) {
	release, err := uc.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()

	payoutID, err := uc.reservePayout(ctx, caller, variant)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(txCtx, tx, uc.ledgerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	contributors, err := reset(txCtx, tx, now)
	if err != nil {
		return nil, err
	}

	if err := uc.funderRepo.Clear(txCtx, tx, uc.ledgerID); err != nil {
		return nil, err
	}

	amount := ledger.Balance
	if err := uc.ledgerRepo.UpdateBalance(txCtx, tx, uc.ledgerID, decimal.Zero, now); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.SetPendingPayout(txCtx, tx, uc.ledgerID, "", now); err != nil {
		return nil, err
	}

	event := domain.LedgerWithdrawnEvent{
		LedgerID:     uc.ledgerID,
		Owner:        ledger.Owner,
		Amount:       amount.String(),
		PayoutID:     payoutID,
		Contributors: len(contributors),
	}
	if err := uc.emit(txCtx, tx, domain.EventTypeLedgerWithdrawn, event.ToPayload(), now); err != nil {
		return nil, err
	}

	// State is already reset inside the transaction; a failed transfer
	// rolls all of it back and leaves the reserved payout id in place.
	if err := uc.transferer.Transfer(withCallGuard(txCtx), payoutID, ledger.Owner, amount); err != nil {
		if uc.metrics != nil {
			uc.metrics.WithdrawErrors.WithLabelValues("transfer_failed").Inc()
		}
		uc.logger.Error().Err(err).Str("amount", amount.String()).Str("payout_id", payoutID).Msg("withdraw transfer failed")

		return nil, fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		if uc.metrics != nil {
			uc.metrics.WithdrawErrors.WithLabelValues("commit_failed").Inc()
		}
		uc.logger.Error().Err(err).
			Str("amount", amount.String()).
			Str("payout_id", payoutID).
			Msg("withdraw commit failed after transfer; retry resumes the same payout")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Withdrawals.WithLabelValues(variant).Inc()
		uc.metrics.WithdrawnAmount.Add(amount.Shift(-domain.NativeDecimals).InexactFloat64())
		uc.metrics.WithdrawDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("owner", ledger.Owner).
		Str("amount", amount.String()).
		Str("payout_id", payoutID).
		Int("contributors", len(contributors)).
		Str("variant", variant).
		Msg("ledger withdrawn")

	return &domain.Withdrawal{
		LedgerID:     uc.ledgerID,
		Owner:        ledger.Owner,
		Amount:       amount,
		PayoutID:     payoutID,
		Contributors: contributors,
		WithdrawnAt:  now,
	}, nil
}

// reservePayout checks the caller and commits the payout instruction id
// before any value moves. An id left behind by an unfinished withdraw is
// reused, so custody sees the retry as the same instruction.
func (uc *FundingUseCase) reservePayout(ctx context.Context, caller, variant string) (string, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(txCtx, tx, uc.ledgerID)
	if err != nil {
		return "", err
	}

	if !ledger.IsOwner(caller) {
		if uc.metrics != nil {
			uc.metrics.WithdrawErrors.WithLabelValues("unauthorized").Inc()
		}
		uc.logger.Warn().Str("caller", caller).Str("variant", variant).Msg("unauthorized withdraw attempt")

		return "", domain.ErrUnauthorized
	}

	if ledger.PendingPayout != "" {
		uc.logger.Warn().Str("payout_id", ledger.PendingPayout).Msg("resuming unfinished payout")
		return ledger.PendingPayout, nil
	}

	payoutID := uc.newID()
	if err := uc.ledgerRepo.SetPendingPayout(txCtx, tx, uc.ledgerID, payoutID, time.Now().UTC()); err != nil {
		return "", err
	}

	if err := tx.Commit(txCtx); err != nil {
		return "", err
	}

	return payoutID, nil
}

func (uc *FundingUseCase) resetByIndex(ctx context.Context, tx Transaction, now time.Time) ([]string, error) {
	count, err := uc.funderRepo.CountTx(ctx, tx, uc.ledgerID)
	if err != nil {
		return nil, err
	}

	contributors := make([]string, 0, count)
	for i := 0; i < count; i++ {
		funder, err := uc.funderRepo.GetAtTx(ctx, tx, uc.ledgerID, i)
		if err != nil {
			return nil, err
		}

		if err := uc.contributionRepo.Reset(ctx, tx, uc.ledgerID, funder, now); err != nil {
			return nil, err
		}

		contributors = append(contributors, funder)
	}

	return contributors, nil
}

func (uc *FundingUseCase) resetFromSnapshot(ctx context.Context, tx Transaction, now time.Time) ([]string, error) {
	funders, err := uc.funderRepo.ListTx(ctx, tx, uc.ledgerID)
	if err != nil {
		return nil, err
	}

	for _, funder := range funders {
		if err := uc.contributionRepo.Reset(ctx, tx, uc.ledgerID, funder, now); err != nil {
			return nil, err
		}
	}

	return funders, nil
}

// GetLedger returns the ledger snapshot.
func (uc *FundingUseCase) GetLedger(ctx context.Context) (*domain.Ledger, error) {
	return uc.ledgerRepo.GetByID(ctx, uc.ledgerID)
}

// GetOwner returns the ledger owner.
func (uc *FundingUseCase) GetOwner(ctx context.Context) (string, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, uc.ledgerID)
	if err != nil {
		return "", err
	}

	return ledger.Owner, nil
}

// GetPriceFeed returns the price feed reference stored at deploy time.
func (uc *FundingUseCase) GetPriceFeed(ctx context.Context) (string, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, uc.ledgerID)
	if err != nil {
		return "", err
	}

	return ledger.PriceFeed, nil
}

// GetAddressToAmountFunded returns the recorded contribution of funder.
func (uc *FundingUseCase) GetAddressToAmountFunded(ctx context.Context, funder string) (decimal.Decimal, error) {
	if err := domain.ValidateAddress(funder); err != nil {
		return decimal.Zero, err
	}

	return uc.contributionRepo.Get(ctx, uc.ledgerID, domain.NormalizeAddress(funder))
}

// GetFunder returns the funder at index in deposit order.
func (uc *FundingUseCase) GetFunder(ctx context.Context, index int) (string, error) {
	if index < 0 || index > domain.MaxPageOffset {
		return "", domain.ErrIndexOutOfRange
	}

	return uc.funderRepo.GetAt(ctx, uc.ledgerID, index)
}

// GetContributorCount returns the length of the funder list.
func (uc *FundingUseCase) GetContributorCount(ctx context.Context) (int, error) {
	return uc.funderRepo.Count(ctx, uc.ledgerID)
}

// ListFundersInput represents input for listing funders.
type ListFundersInput struct {
	Limit  int
	Offset int
}

// ListFunders lists funders in deposit order.
func (uc *FundingUseCase) ListFunders(ctx context.Context, input ListFundersInput) ([]string, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.funderRepo.List(ctx, uc.ledgerID, limit, offset)
}

// GetConversionRate converts amount with the current oracle quote.
func (uc *FundingUseCase) GetConversionRate(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, domain.PriceQuote, error) {
	if err := domain.ValidateNativeAmount(amount); err != nil {
		return decimal.Zero, domain.PriceQuote{}, err
	}

	return uc.convert(ctx, amount)
}

func (uc *FundingUseCase) convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, domain.PriceQuote, error) {
	quote, err := uc.priceFeed.LatestQuote(ctx)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.OracleErrors.Inc()
		}
		uc.logger.Error().Err(err).Str("price_feed", uc.priceFeed.Address()).Msg("price feed failed")

		if errors.Is(err, domain.ErrOracleUnavailable) {
			return decimal.Zero, domain.PriceQuote{}, err
		}
		return decimal.Zero, domain.PriceQuote{}, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}

	return domain.ConversionRate(amount, quote), quote, nil
}

func (uc *FundingUseCase) emit(ctx context.Context, tx Transaction, eventType string, payload map[string]any, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.newID(),
		AggregateID:   uc.ledgerID,
		AggregateType: domain.AggregateTypeLedger,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	})
}

func (uc *FundingUseCase) newID() string {
	if uc.idGen == nil {
		return uuid.NewString()
	}

	return uc.idGen.Generate()
}

func (uc *FundingUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}

	return uc.retrier.Retry(ctx, operation)
}
