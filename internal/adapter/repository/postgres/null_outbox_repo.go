package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// NullOutboxRepository discards ledger events when the relay is disabled.
// Any storage backend can use it; nothing is ever pending.
type NullOutboxRepository struct {
	logger    zerolog.Logger
	discarded atomic.Int64
}

// NewNullOutboxRepository creates a new NullOutboxRepository.
func NewNullOutboxRepository(logger zerolog.Logger) *NullOutboxRepository {
	return &NullOutboxRepository{logger: logger.With().Str("component", "outbox").Logger()}
}

// Create drops event.
func (r *NullOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.discarded.Add(1)
	r.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Msg("outbox disabled, event discarded")

	return nil
}

// Discarded returns how many events were dropped.
func (r *NullOutboxRepository) Discarded() int64 {
	return r.discarded.Load()
}

func (r *NullOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return domain.ErrOutboxEventNotFound
}

func (r *NullOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}
