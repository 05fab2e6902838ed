package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundledger/internal/adapter/repository/memory"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/custody"
	"github.com/iho/fundledger/internal/infrastructure/metrics"
	"github.com/iho/fundledger/internal/infrastructure/pricefeed"
	"github.com/iho/fundledger/internal/usecase"
	"github.com/iho/fundledger/internal/usecase/mocks"
)

const (
	owner    = "0x00000000000000000000000000000000000000aa"
	funderA  = "0x00000000000000000000000000000000000000a1"
	funderB  = "0x00000000000000000000000000000000000000b2"
	feedAddr = "0x000000000000000000000000000000000000feed"
)

// At 2000 reference units per whole native unit, 1e15 native units convert
// to exactly 2 reference units.
var (
	sixtyReference = decimal.New(30, 15) // 60 reference units
	tenReference   = decimal.New(5, 15)  // 10 reference units
	fiftyReference = decimal.New(25, 15) // exactly the threshold
)

type harness struct {
	uc           *usecase.FundingUseCase
	consistency  *usecase.LedgerUseCase
	store        *memory.Store
	feed         *pricefeed.Static
	vault        *custody.Vault
	contribution *memory.ContributionRepository
	funders      *memory.FunderRepository
	ledgers      *memory.LedgerRepository
}

func newHarness(t *testing.T, opts ...func(*usecase.FundingConfig)) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	var seq atomic.Int64
	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().DoAndReturn(func() string {
		return fmt.Sprintf("evt-%d", seq.Add(1))
	}).AnyTimes()

	h := &harness{
		store: memory.NewStore(),
		feed:  pricefeed.NewStatic(feedAddr, pricefeed.DefaultQuote()),
		vault: custody.NewVault(),
	}
	h.contribution = memory.NewContributionRepository(h.store)
	h.funders = memory.NewFunderRepository(h.store)
	h.ledgers = memory.NewLedgerRepository(h.store)

	cfg := usecase.FundingConfig{
		LedgerID:         "fundme",
		TxManager:        memory.NewTxManager(h.store),
		LedgerRepo:       h.ledgers,
		ContributionRepo: h.contribution,
		FunderRepo:       h.funders,
		OutboxRepo:       memory.NewOutboxRepository(h.store),
		PriceFeed:        h.feed,
		Transferer:       h.vault,
		IDGen:            idGen,
		Logger:           zerolog.Nop(),
		MinimumReference: decimal.New(50, 18),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h.uc = usecase.NewFundingUseCase(cfg)
	h.consistency = usecase.NewLedgerUseCase(cfg.LedgerID, h.ledgers)

	_, err := h.uc.Deploy(context.Background(), usecase.DeployInput{Owner: owner, PriceFeed: feedAddr})
	require.NoError(t, err)

	return h
}

func (h *harness) fund(t *testing.T, funder string, amount decimal.Decimal) *domain.Deposit {
	t.Helper()

	deposit, err := h.uc.Fund(context.Background(), usecase.FundInput{Funder: funder, Amount: amount})
	require.NoError(t, err)
	return deposit
}

func (h *harness) contributionOf(t *testing.T, funder string) decimal.Decimal {
	t.Helper()

	amount, err := h.uc.GetAddressToAmountFunded(context.Background(), funder)
	require.NoError(t, err)
	return amount
}

func (h *harness) funderList(t *testing.T) []string {
	t.Helper()

	list, err := h.uc.ListFunders(context.Background(), usecase.ListFundersInput{Limit: 1000})
	require.NoError(t, err)
	return list
}

func (h *harness) requireConsistent(t *testing.T) {
	t.Helper()

	ok, err := h.consistency.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFundingLedgerScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	deposit := h.fund(t, funderA, sixtyReference)
	assert.True(t, deposit.ReferenceAmount.Equal(decimal.New(60, 18)), deposit.ReferenceAmount.String())
	assert.True(t, h.contributionOf(t, funderA).Equal(sixtyReference))
	assert.Equal(t, []string{funderA}, h.funderList(t))

	_, err := h.uc.Fund(ctx, usecase.FundInput{Funder: funderA, Amount: tenReference})
	require.ErrorIs(t, err, domain.ErrInsufficientContribution)
	assert.True(t, h.contributionOf(t, funderA).Equal(sixtyReference))

	_, err = h.uc.Withdraw(ctx, funderA)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, h.contributionOf(t, funderA).Equal(sixtyReference))

	before := h.vault.BalanceOf(owner)
	withdrawal, err := h.uc.Withdraw(ctx, owner)
	require.NoError(t, err)

	assert.True(t, withdrawal.Amount.Equal(sixtyReference))
	assert.True(t, h.contributionOf(t, funderA).IsZero())
	assert.Empty(t, h.funderList(t))
	assert.True(t, h.vault.BalanceOf(owner).Sub(before).Equal(sixtyReference))

	ledger, err := h.uc.GetLedger(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.Balance.IsZero())
	h.requireConsistent(t)
}

func TestFund_SumOfContributionsEqualsDeposits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	deposits := []struct {
		funder string
		amount decimal.Decimal
	}{
		{funderA, sixtyReference},
		{funderB, fiftyReference},
		{funderA, fiftyReference},
		{funderA, decimal.New(1, 18)},
	}

	total := decimal.Zero
	for _, d := range deposits {
		h.fund(t, d.funder, d.amount)
		total = total.Add(d.amount)
	}

	sum := h.contributionOf(t, funderA).Add(h.contributionOf(t, funderB))
	assert.True(t, sum.Equal(total), "contributions %s, deposits %s", sum, total)

	ledger, err := h.uc.GetLedger(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.Balance.Equal(total))

	// Repeat funders are appended on every deposit.
	count, err := h.uc.GetContributorCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(deposits), count)
	assert.Equal(t, []string{funderA, funderB, funderA, funderA}, h.funderList(t))

	h.requireConsistent(t)
}

func TestFund_ThresholdIsInclusive(t *testing.T) {
	h := newHarness(t)

	deposit := h.fund(t, funderA, fiftyReference)
	assert.True(t, deposit.ReferenceAmount.Equal(decimal.New(50, 18)))

	_, err := h.uc.Fund(context.Background(), usecase.FundInput{
		Funder: funderA,
		Amount: fiftyReference.Sub(decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientContribution)
}

func TestFund_RejectedDepositDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.fund(t, funderB, sixtyReference)

	tests := []struct {
		name    string
		input   usecase.FundInput
		prepare func()
		wantErr error
	}{
		{
			name:    "below threshold",
			input:   usecase.FundInput{Funder: funderA, Amount: tenReference},
			wantErr: domain.ErrInsufficientContribution,
		},
		{
			name:    "zero amount",
			input:   usecase.FundInput{Funder: funderA, Amount: decimal.Zero},
			wantErr: domain.ErrInsufficientContribution,
		},
		{
			name:    "negative amount",
			input:   usecase.FundInput{Funder: funderA, Amount: decimal.NewFromInt(-1)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "bad address",
			input:   usecase.FundInput{Funder: "alice", Amount: sixtyReference},
			wantErr: domain.ErrInvalidAddress,
		},
		{
			name:  "zero price",
			input: usecase.FundInput{Funder: funderA, Amount: sixtyReference},
			prepare: func() {
				h.feed.SetQuote(domain.PriceQuote{Price: decimal.Zero, Decimals: 8})
			},
			wantErr: domain.ErrInsufficientContribution,
		},
		{
			name:  "oracle down",
			input: usecase.FundInput{Funder: funderA, Amount: sixtyReference},
			prepare: func() {
				h.feed.Fail(errors.New("stale round"))
			},
			wantErr: domain.ErrOracleUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}

			_, err := h.uc.Fund(ctx, tt.input)
			require.ErrorIs(t, err, tt.wantErr)

			assert.True(t, h.contributionOf(t, funderA).IsZero())
			assert.Equal(t, []string{funderB}, h.funderList(t))
			h.requireConsistent(t)
		})
	}
}

func TestWithdraw_VariantsProduceIdenticalState(t *testing.T) {
	ctx := context.Background()

	variants := map[string]func(h *harness) (*domain.Withdrawal, error){
		"withdraw":         func(h *harness) (*domain.Withdrawal, error) { return h.uc.Withdraw(ctx, owner) },
		"cheaper_withdraw": func(h *harness) (*domain.Withdrawal, error) { return h.uc.CheaperWithdraw(ctx, owner) },
	}

	results := make(map[string]*domain.Withdrawal)
	vaults := make(map[string]decimal.Decimal)

	for name, withdraw := range variants {
		h := newHarness(t)
		h.fund(t, funderA, sixtyReference)
		h.fund(t, funderB, fiftyReference)
		h.fund(t, funderA, fiftyReference)

		withdrawal, err := withdraw(h)
		require.NoError(t, err, name)

		assert.True(t, h.contributionOf(t, funderA).IsZero(), name)
		assert.True(t, h.contributionOf(t, funderB).IsZero(), name)
		assert.Empty(t, h.funderList(t), name)
		h.requireConsistent(t)

		results[name] = withdrawal
		vaults[name] = h.vault.BalanceOf(owner)
	}

	a, b := results["withdraw"], results["cheaper_withdraw"]
	assert.True(t, a.Amount.Equal(b.Amount))
	assert.Equal(t, a.Contributors, b.Contributors)
	assert.Equal(t, []string{funderA, funderB, funderA}, a.Contributors)
	assert.True(t, vaults["withdraw"].Equal(vaults["cheaper_withdraw"]))
}

func TestWithdraw_EmptyLedger(t *testing.T) {
	h := newHarness(t)

	withdrawal, err := h.uc.CheaperWithdraw(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, withdrawal.Amount.IsZero())
	assert.Empty(t, withdrawal.Contributors)
}

func TestWithdraw_OwnerMatchIgnoresCase(t *testing.T) {
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)

	_, err := h.uc.Withdraw(context.Background(), "0x00000000000000000000000000000000000000AA")
	require.NoError(t, err)
}

func TestWithdraw_TransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)
	h.fund(t, funderB, fiftyReference)

	h.vault.Fail(errors.New("custody offline"))

	for _, withdraw := range []func(context.Context, string) (*domain.Withdrawal, error){h.uc.Withdraw, h.uc.CheaperWithdraw} {
		_, err := withdraw(ctx, owner)
		require.ErrorIs(t, err, domain.ErrTransferFailed)

		assert.True(t, h.contributionOf(t, funderA).Equal(sixtyReference))
		assert.True(t, h.contributionOf(t, funderB).Equal(fiftyReference))
		assert.Equal(t, []string{funderA, funderB}, h.funderList(t))
		assert.True(t, h.vault.BalanceOf(owner).IsZero())
		h.requireConsistent(t)
	}

	h.vault.Fail(nil)
	withdrawal, err := h.uc.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.True(t, withdrawal.Amount.Equal(sixtyReference.Add(fiftyReference)))
}

func TestWithdraw_ReentrantReceiverIsRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)

	var fundErr, withdrawErr error
	h.vault.SetReceiver(owner, func(ctx context.Context, amount decimal.Decimal) error {
		_, fundErr = h.uc.Fund(ctx, usecase.FundInput{Funder: owner, Amount: sixtyReference})
		_, withdrawErr = h.uc.CheaperWithdraw(ctx, owner)
		return nil
	})

	withdrawal, err := h.uc.Withdraw(ctx, owner)
	require.NoError(t, err)

	assert.ErrorIs(t, fundErr, domain.ErrReentrantCall)
	assert.ErrorIs(t, withdrawErr, domain.ErrReentrantCall)
	assert.True(t, withdrawal.Amount.Equal(sixtyReference))
	assert.True(t, h.vault.BalanceOf(owner).Equal(sixtyReference))
	assert.Empty(t, h.funderList(t))
	h.requireConsistent(t)
}

func TestWithdraw_TransferSeesResetStateAndGuardedContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	transferer := mocks.NewMockTransferer(ctrl)

	h := newHarness(t, func(cfg *usecase.FundingConfig) {
		cfg.Transferer = transferer
	})
	h.fund(t, funderA, sixtyReference)

	var paid string
	transferer.EXPECT().
		Transfer(gomock.Any(), gomock.Any(), owner, gomock.Any()).
		DoAndReturn(func(ctx context.Context, payoutID, to string, amount decimal.Decimal) error {
			assert.True(t, usecase.InGuardedCall(ctx))
			assert.True(t, amount.Equal(sixtyReference))
			assert.NotEmpty(t, payoutID)
			paid = payoutID
			return nil
		})

	withdrawal, err := h.uc.Withdraw(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, paid, withdrawal.PayoutID)

	ledger, err := h.uc.GetLedger(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ledger.PendingPayout)
}

func TestWithdraw_ReentrantCallWithFreshContextFailsFast(t *testing.T) {
	h := newHarness(t, func(cfg *usecase.FundingConfig) {
		cfg.LockWait = 50 * time.Millisecond
	})
	h.fund(t, funderA, sixtyReference)

	var fundErr, withdrawErr error
	h.vault.SetReceiver(owner, func(_ context.Context, amount decimal.Decimal) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, fundErr = h.uc.Fund(ctx, usecase.FundInput{Funder: owner, Amount: sixtyReference})
		_, withdrawErr = h.uc.CheaperWithdraw(context.Background(), owner)
		return nil
	})

	type result struct {
		withdrawal *domain.Withdrawal
		err        error
	}
	done := make(chan result, 1)
	go func() {
		withdrawal, err := h.uc.Withdraw(context.Background(), owner)
		done <- result{withdrawal, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("withdraw blocked on a call made from its own transfer")
	}

	require.NoError(t, res.err)
	assert.ErrorIs(t, fundErr, domain.ErrLedgerBusy)
	assert.ErrorIs(t, withdrawErr, domain.ErrLedgerBusy)
	assert.True(t, res.withdrawal.Amount.Equal(sixtyReference))
	assert.True(t, h.vault.BalanceOf(owner).Equal(sixtyReference))
	h.requireConsistent(t)
}

func TestWithdraw_CallerContextCancelledWhileWaiting(t *testing.T) {
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)

	entered := make(chan struct{})
	unblock := make(chan struct{})
	h.vault.SetReceiver(owner, func(context.Context, decimal.Decimal) error {
		close(entered)
		<-unblock
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.uc.Withdraw(context.Background(), owner)
		done <- err
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.uc.Fund(ctx, usecase.FundInput{Funder: funderB, Amount: sixtyReference})
	assert.ErrorIs(t, err, context.Canceled)

	close(unblock)
	require.NoError(t, <-done)
}

func TestWithdraw_CommitFailureAfterTransferDoesNotPayTwice(t *testing.T) {
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)
	h.fund(t, funderB, fiftyReference)
	total := sixtyReference.Add(fiftyReference)

	ctx, cancel := context.WithCancel(context.Background())
	h.vault.SetReceiver(owner, func(context.Context, decimal.Decimal) error {
		// The caller goes away after custody accepted the payout.
		cancel()
		return nil
	})

	_, err := h.uc.Withdraw(ctx, owner)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, h.vault.BalanceOf(owner).Equal(total))

	ledger, err := h.uc.GetLedger(context.Background())
	require.NoError(t, err)
	assert.True(t, ledger.Balance.Equal(total))
	pending := ledger.PendingPayout
	require.NotEmpty(t, pending)

	h.vault.SetReceiver(owner, nil)
	withdrawal, err := h.uc.CheaperWithdraw(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, pending, withdrawal.PayoutID)
	assert.True(t, withdrawal.Amount.Equal(total))
	assert.True(t, h.vault.BalanceOf(owner).Equal(total), "owner paid %s", h.vault.BalanceOf(owner))
	assert.True(t, h.contributionOf(t, funderA).IsZero())
	assert.Empty(t, h.funderList(t))
	h.requireConsistent(t)

	ledger, err = h.uc.GetLedger(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ledger.PendingPayout)
	assert.True(t, ledger.Balance.IsZero())
}

func TestWithdraw_EachCompletedWithdrawGetsNewPayoutID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.fund(t, funderA, sixtyReference)
	first, err := h.uc.Withdraw(ctx, owner)
	require.NoError(t, err)

	h.fund(t, funderB, fiftyReference)
	second, err := h.uc.Withdraw(ctx, owner)
	require.NoError(t, err)

	assert.NotEqual(t, first.PayoutID, second.PayoutID)
	assert.True(t, h.vault.BalanceOf(owner).Equal(sixtyReference.Add(fiftyReference)))
}

func TestFund_OracleErrorIsWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockPriceFeed(ctrl)
	feed.EXPECT().Address().Return(feedAddr).AnyTimes()
	feed.EXPECT().LatestQuote(gomock.Any()).Return(domain.PriceQuote{}, errors.New("connection reset"))

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := newHarness(t, func(cfg *usecase.FundingConfig) {
		cfg.PriceFeed = feed
		cfg.Metrics = m
	})

	_, err := h.uc.Fund(context.Background(), usecase.FundInput{Funder: funderA, Amount: sixtyReference})
	require.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OracleErrors))
}

func TestFund_RunsThroughRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, operation func() error) error {
			return operation()
		})

	h := newHarness(t, func(cfg *usecase.FundingConfig) {
		cfg.Retrier = retrier
	})

	h.fund(t, funderA, sixtyReference)
	assert.True(t, h.contributionOf(t, funderA).Equal(sixtyReference))
}

func TestFundingMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := newHarness(t, func(cfg *usecase.FundingConfig) {
		cfg.Metrics = m
	})
	ctx := context.Background()

	h.fund(t, funderA, sixtyReference)
	_, _ = h.uc.Fund(ctx, usecase.FundInput{Funder: funderA, Amount: tenReference})
	_, _ = h.uc.Withdraw(ctx, funderB)
	_, err := h.uc.CheaperWithdraw(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FundsReceived))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContributionsRejected.WithLabelValues("below_minimum")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WithdrawErrors.WithLabelValues("unauthorized")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Withdrawals.WithLabelValues("cheaper_withdraw")))
	assert.InDelta(t, 0.03, testutil.ToFloat64(m.WithdrawnAmount), 1e-12)
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	ledger, err := h.uc.Deploy(ctx, usecase.DeployInput{Owner: owner, PriceFeed: feedAddr})
	require.NoError(t, err)
	assert.Equal(t, owner, ledger.Owner)

	_, err = h.uc.Deploy(ctx, usecase.DeployInput{Owner: funderA, PriceFeed: feedAddr})
	assert.ErrorIs(t, err, domain.ErrLedgerAlreadyDeployed)

	_, err = h.uc.Deploy(ctx, usecase.DeployInput{Owner: owner, PriceFeed: "0xother"})
	assert.ErrorIs(t, err, domain.ErrLedgerAlreadyDeployed)

	_, err = h.uc.Deploy(ctx, usecase.DeployInput{Owner: "nobody"})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	gotOwner, err := h.uc.GetOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, gotOwner)

	gotFeed, err := h.uc.GetPriceFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedAddr, gotFeed)
}

func TestFundBeforeDeploy(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewFundingUseCase(usecase.FundingConfig{
		TxManager:        memory.NewTxManager(store),
		LedgerRepo:       memory.NewLedgerRepository(store),
		ContributionRepo: memory.NewContributionRepository(store),
		FunderRepo:       memory.NewFunderRepository(store),
		PriceFeed:        pricefeed.NewStatic(feedAddr, pricefeed.DefaultQuote()),
		Transferer:       custody.NewVault(),
		Logger:           zerolog.Nop(),
	})

	_, err := uc.Fund(context.Background(), usecase.FundInput{Funder: funderA, Amount: sixtyReference})
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)

	_, err = uc.GetOwner(context.Background())
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)
}

func TestGetFunder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.fund(t, funderA, sixtyReference)
	h.fund(t, funderB, sixtyReference)

	got, err := h.uc.GetFunder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, funderB, got)

	for _, index := range []int{2, 100, -1} {
		_, err := h.uc.GetFunder(ctx, index)
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange, "index %d", index)
	}
}

func TestGetConversionRate(t *testing.T) {
	h := newHarness(t)

	converted, quote, err := h.uc.GetConversionRate(context.Background(), sixtyReference)
	require.NoError(t, err)
	assert.True(t, converted.Equal(decimal.New(60, 18)))
	assert.Equal(t, int32(8), quote.Decimals)

	_, _, err = h.uc.GetConversionRate(context.Background(), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
