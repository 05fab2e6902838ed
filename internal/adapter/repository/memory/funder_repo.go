package memory

import (
	"context"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// FunderRepository implements usecase.FunderRepository.
type FunderRepository struct {
	store *Store
}

// NewFunderRepository creates a new FunderRepository.
func NewFunderRepository(store *Store) *FunderRepository {
	return &FunderRepository{store: store}
}

// Append adds funder at the end of the list and returns its index.
func (r *FunderRepository) Append(ctx context.Context, tx usecase.Transaction, ledgerID, funder string) (int, error) {
	st := workState(tx)
	st.funders[ledgerID] = append(st.funders[ledgerID], funder)

	return len(st.funders[ledgerID]) - 1, nil
}

// Count returns the committed list length.
func (r *FunderRepository) Count(ctx context.Context, ledgerID string) (int, error) {
	var n int
	r.store.read(func(st *state) { n = len(st.funders[ledgerID]) })

	return n, nil
}

// CountTx returns the list length inside tx.
func (r *FunderRepository) CountTx(ctx context.Context, tx usecase.Transaction, ledgerID string) (int, error) {
	return len(workState(tx).funders[ledgerID]), nil
}

// GetAt returns the committed funder at index.
func (r *FunderRepository) GetAt(ctx context.Context, ledgerID string, index int) (string, error) {
	var list []string
	r.store.read(func(st *state) { list = st.funders[ledgerID] })

	return at(list, index)
}

// GetAtTx returns the funder at index inside tx.
func (r *FunderRepository) GetAtTx(ctx context.Context, tx usecase.Transaction, ledgerID string, index int) (string, error) {
	return at(workState(tx).funders[ledgerID], index)
}

// List returns a page of committed funders.
func (r *FunderRepository) List(ctx context.Context, ledgerID string, limit, offset int) ([]string, error) {
	page := []string{}
	r.store.read(func(st *state) {
		list := st.funders[ledgerID]
		if offset >= len(list) {
			return
		}
		end := min(offset+limit, len(list))
		page = append([]string(nil), list[offset:end]...)
	})

	return page, nil
}

// ListTx returns the whole list inside tx.
func (r *FunderRepository) ListTx(ctx context.Context, tx usecase.Transaction, ledgerID string) ([]string, error) {
	return append([]string(nil), workState(tx).funders[ledgerID]...), nil
}

// Clear empties the list.
func (r *FunderRepository) Clear(ctx context.Context, tx usecase.Transaction, ledgerID string) error {
	delete(workState(tx).funders, ledgerID)
	return nil
}

func at(list []string, index int) (string, error) {
	if index < 0 || index >= len(list) {
		return "", domain.ErrIndexOutOfRange
	}

	return list[index], nil
}
