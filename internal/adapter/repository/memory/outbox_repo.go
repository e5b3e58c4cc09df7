package memory

import (
	"context"
	"slices"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// Create stages an outbox event.
func (r *OutboxRepository) Create(ctx context.Context, t usecase.Transaction, event *domain.OutboxEvent) error {
	tx, err := r.store.asTx(t)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e := *event
	tx.events = append(tx.events, &e)

	return nil
}

// GetUnpublished returns up to limit pending events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, e := range s.outbox {
		if e.Published {
			continue
		}

		c := *e
		events = append(events, &c)

		if limit > 0 && len(events) == limit {
			break
		}
	}

	return events, nil
}

// MarkPublished drops a delivered event. Nothing reads published events back,
// so keeping them would only grow the store.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.outbox {
		if e.ID == id {
			s.outbox = slices.Delete(s.outbox, i, i+1)
			return nil
		}
	}

	return nil
}
