package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/adapter/repository/postgres"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/custody"
	infra "github.com/iho/fundledger/internal/infrastructure/postgres"
	"github.com/iho/fundledger/internal/infrastructure/pricefeed"
	"github.com/iho/fundledger/internal/usecase"
)

const (
	integrationOwner = "0x00000000000000000000000000000000000000aa"
	integrationFeed  = pricefeed.DefaultStaticAddress
)

// testDB provides a migrated, truncated database. Tests skip when
// DATABASE_URL is not set.
type testDB struct {
	pool *pgxpool.Pool
	t    *testing.T
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infra.NewMigrator(dbURL, "../../../infrastructure/postgres/migrations", zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.Open(ctx, infra.PoolConfig{DatabaseURL: dbURL, ApplicationName: "fundledger-test", MaxConns: 20, MinConns: 2})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	db := &testDB{pool: pool, t: t}
	db.truncateAll(ctx)

	return db
}

func (db *testDB) truncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.pool.Exec(ctx, `TRUNCATE TABLE funders, contributions, outbox_events, ledgers CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

func (db *testDB) fundingUseCase(t *testing.T, vault *custody.Vault) *usecase.FundingUseCase {
	t.Helper()

	uc := usecase.NewFundingUseCase(usecase.FundingConfig{
		LedgerID:         "integration",
		TxManager:        postgres.NewTxManager(db.pool, postgres.TxConfig{LockTimeout: 5 * time.Second}),
		LedgerRepo:       postgres.NewLedgerRepository(db.pool),
		ContributionRepo: postgres.NewContributionRepository(db.pool),
		FunderRepo:       postgres.NewFunderRepository(db.pool),
		OutboxRepo:       postgres.NewOutboxRepository(db.pool),
		PriceFeed:        pricefeed.NewStatic(integrationFeed, pricefeed.DefaultQuote()),
		Transferer:       vault,
		IDGen:            postgres.NewULIDGenerator(),
		Retrier:          postgres.NewRetrier(postgres.DefaultRetryPolicy(), zerolog.Nop()),
		Logger:           zerolog.Nop(),
	})

	if _, err := uc.Deploy(context.Background(), usecase.DeployInput{Owner: integrationOwner}); err != nil {
		t.Fatalf("failed to deploy ledger: %v", err)
	}

	return uc
}

func TestIntegrationConcurrentFunds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	uc := db.fundingUseCase(t, custody.NewVault())

	funders := []string{
		"0x00000000000000000000000000000000000000b1",
		"0x00000000000000000000000000000000000000b2",
		"0x00000000000000000000000000000000000000b3",
		"0x00000000000000000000000000000000000000b4",
	}
	amount := decimal.RequireFromString("25000000000000000")
	perFunder := 10

	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
	)

	for _, funder := range funders {
		for range perFunder {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := uc.Fund(ctx, usecase.FundInput{Funder: funder, Amount: amount}); err != nil {
					t.Errorf("fund failed: %v", err)
					return
				}
				successCount.Add(1)
			}()
		}
	}

	wg.Wait()

	total := len(funders) * perFunder
	if int(successCount.Load()) != total {
		t.Fatalf("expected %d deposits, got %d", total, successCount.Load())
	}

	count, err := uc.GetContributorCount(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != total {
		t.Errorf("expected funder list length %d, got %d", total, count)
	}

	for _, funder := range funders {
		got, err := uc.GetAddressToAmountFunded(ctx, funder)
		if err != nil {
			t.Fatalf("contribution lookup failed: %v", err)
		}
		if !got.Equal(amount.Mul(decimal.NewFromInt(int64(perFunder)))) {
			t.Errorf("funder %s: expected %s, got %s", funder, amount.Mul(decimal.NewFromInt(int64(perFunder))), got)
		}
	}

	report, err := usecase.NewLedgerUseCase("integration", postgres.NewLedgerRepository(db.pool)).Report(ctx)
	if err != nil {
		t.Fatalf("ledger inconsistent: %v", err)
	}
	if !report.Consistent {
		t.Errorf("expected consistent ledger, got %+v", report)
	}
}

func TestIntegrationWithdrawResetsState(t *testing.T) {
	for _, variant := range []string{"withdraw", "cheaper"} {
		t.Run(variant, func(t *testing.T) {
			db := newTestDB(t)
			ctx := context.Background()
			vault := custody.NewVault()
			uc := db.fundingUseCase(t, vault)

			funder := "0x00000000000000000000000000000000000000bb"
			amount := decimal.RequireFromString("100000000000000000")
			for range 3 {
				if _, err := uc.Fund(ctx, usecase.FundInput{Funder: funder, Amount: amount}); err != nil {
					t.Fatalf("fund failed: %v", err)
				}
			}

			withdraw := uc.Withdraw
			if variant == "cheaper" {
				withdraw = uc.CheaperWithdraw
			}

			w, err := withdraw(ctx, integrationOwner)
			if err != nil {
				t.Fatalf("withdraw failed: %v", err)
			}
			if !w.Amount.Equal(amount.Mul(decimal.NewFromInt(3))) {
				t.Errorf("expected withdrawn %s, got %s", amount.Mul(decimal.NewFromInt(3)), w.Amount)
			}
			if !vault.BalanceOf(integrationOwner).Equal(w.Amount) {
				t.Errorf("expected owner to receive %s, got %s", w.Amount, vault.BalanceOf(integrationOwner))
			}

			count, _ := uc.GetContributorCount(ctx)
			if count != 0 {
				t.Errorf("expected empty funder list, got %d", count)
			}
			got, _ := uc.GetAddressToAmountFunded(ctx, funder)
			if !got.IsZero() {
				t.Errorf("expected zero contribution, got %s", got)
			}
			ledger, _ := uc.GetLedger(ctx)
			if !ledger.Balance.IsZero() {
				t.Errorf("expected zero balance, got %s", ledger.Balance)
			}

			if _, err := uc.GetFunder(ctx, 0); err == nil {
				t.Error("expected index out of range after withdraw")
			}
		})
	}
}

func TestIntegrationOutboxEvents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	uc := db.fundingUseCase(t, custody.NewVault())
	outbox := postgres.NewOutboxRepository(db.pool)

	if _, err := uc.Fund(ctx, usecase.FundInput{
		Funder: "0x00000000000000000000000000000000000000bb",
		Amount: decimal.RequireFromString("25000000000000000"),
	}); err != nil {
		t.Fatalf("fund failed: %v", err)
	}

	events, err := outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to read outbox: %v", err)
	}

	types := map[string]int{}
	for _, e := range events {
		types[e.EventType]++
	}
	if types[domain.EventTypeLedgerDeployed] != 1 || types[domain.EventTypeLedgerFunded] != 1 {
		t.Fatalf("unexpected events: %v", types)
	}

	now := time.Now().UTC()
	for _, e := range events {
		if err := outbox.MarkPublished(ctx, e.ID, now); err != nil {
			t.Fatalf("mark published failed: %v", err)
		}
	}

	remaining, err := outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to read outbox: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no unpublished events, got %d", len(remaining))
	}

	if err := outbox.DeletePublished(ctx, now.Add(time.Second)); err != nil {
		t.Fatalf("delete published failed: %v", err)
	}
}
