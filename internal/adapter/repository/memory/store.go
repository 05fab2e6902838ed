package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// ErrTxDone is returned when committing a finished transaction.
var ErrTxDone = errors.New("transaction already committed or rolled back")

type state struct {
	ledgers       map[string]domain.Ledger
	contributions map[string]map[string]decimal.Decimal
	funders       map[string][]string
}

func newState() *state {
	return &state{
		ledgers:       make(map[string]domain.Ledger),
		contributions: make(map[string]map[string]decimal.Decimal),
		funders:       make(map[string][]string),
	}
}

func (s *state) clone() *state {
	c := &state{
		ledgers:       maps.Clone(s.ledgers),
		contributions: make(map[string]map[string]decimal.Decimal, len(s.contributions)),
		funders:       make(map[string][]string, len(s.funders)),
	}
	for id, m := range s.contributions {
		c.contributions[id] = maps.Clone(m)
	}
	for id, list := range s.funders {
		c.funders[id] = append([]string(nil), list...)
	}

	return c
}

// Store is an in-memory ledger store. Transactions work on a private copy
// of the committed state and are serialized; readers see committed state only.
type Store struct {
	mu        sync.RWMutex
	writer    sync.Mutex
	committed *state
	outbox    []*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{committed: newState()}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// Tx is an in-memory transaction.
type Tx struct {
	store   *Store
	work    *state
	pending []*domain.OutboxEvent
	done    bool
}

// Commit publishes the working copy. A cancelled ctx aborts the
// transaction instead, as a database connection would.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}

	if err := ctx.Err(); err != nil {
		t.done = true
		t.store.writer.Unlock()
		return err
	}

	t.store.mu.Lock()
	t.store.committed = t.work
	t.store.outbox = append(t.store.outbox, t.pending...)
	t.store.mu.Unlock()

	t.done = true
	t.store.writer.Unlock()

	return nil
}

// Rollback discards the working copy. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.done = true
	t.store.writer.Unlock()

	return nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction, waiting for any running one to finish.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.store.writer.Lock()

	var work *state
	m.store.read(func(st *state) { work = st.clone() })

	return &Tx{store: m.store, work: work}, nil
}

func workState(tx usecase.Transaction) *state {
	return tx.(*Tx).work
}
