package postgres

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/iho/fundledger/internal/domain"
)

func TestFunderRepositoryCount(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT COUNT").
		WithArgs("fundme").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := newFunderRepository(mockPool)
	count, err := repo.Count(context.Background(), "fundme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 funders, got %d", count)
	}

	assertExpectations(t, mockPool)
}

func TestFunderRepositoryGetAt(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT funder FROM funders").
		WithArgs("fundme", int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"funder"}).AddRow("0x00000000000000000000000000000000000000aa"))

	repo := newFunderRepository(mockPool)
	funder, err := repo.GetAt(context.Background(), "fundme", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funder != "0x00000000000000000000000000000000000000aa" {
		t.Fatalf("unexpected funder %s", funder)
	}

	assertExpectations(t, mockPool)
}

func TestFunderRepositoryGetAtOutOfRange(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT funder FROM funders").
		WithArgs("fundme", int32(7)).
		WillReturnError(pgx.ErrNoRows)

	repo := newFunderRepository(mockPool)
	if _, err := repo.GetAt(context.Background(), "fundme", 7); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	// Negative indexes never reach the database.
	if _, err := repo.GetAt(context.Background(), "fundme", -1); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestFunderRepositoryAppendAndClearInTx(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mockPool.ExpectQuery("INSERT INTO funders").
		WithArgs("fundme", "0x00000000000000000000000000000000000000aa").
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(int32(2)))
	mockPool.ExpectExec("DELETE FROM funders").
		WithArgs("fundme").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mockPool.ExpectCommit()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool, TxConfig{}).Begin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := newFunderRepository(mockPool)
	index, err := repo.Append(ctx, tx, "fundme", "0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if index != 2 {
		t.Fatalf("expected index 2, got %d", index)
	}

	if err := repo.Clear(ctx, tx, "fundme"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestFunderRepositoryListReturnsEmptySlice(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT funder FROM funders").
		WithArgs("fundme", int32(50), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"funder"}))

	repo := newFunderRepository(mockPool)
	funders, err := repo.List(context.Background(), "fundme", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funders == nil || len(funders) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", funders)
	}

	assertExpectations(t, mockPool)
}

func TestFunderRepositoryListPastAddressableRange(t *testing.T) {
	mockPool := newMockPool(t)

	repo := newFunderRepository(mockPool)
	funders, err := repo.List(context.Background(), "fundme", 50, math.MaxInt32+1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funders == nil || len(funders) != 0 {
		t.Fatalf("expected empty page, got %#v", funders)
	}

	// No query was sent.
	assertExpectations(t, mockPool)
}

func TestLedgerRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM ledgers WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newLedgerRepository(mockPool)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestContributionRepositoryGetMissingIsZero(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT amount FROM contributions").
		WithArgs("fundme", "0x00000000000000000000000000000000000000bb").
		WillReturnError(pgx.ErrNoRows)

	repo := newContributionRepository(mockPool)
	amount, err := repo.Get(context.Background(), "fundme", "0x00000000000000000000000000000000000000bb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.IsZero() {
		t.Fatalf("expected zero, got %s", amount)
	}

	assertExpectations(t, mockPool)
}
