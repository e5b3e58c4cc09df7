package memory

import (
	"context"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// Create stages an entry.
func (r *EntryRepository) Create(ctx context.Context, t usecase.Transaction, entry *domain.Entry) error {
	tx, err := r.store.asTx(t)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e := *entry
	tx.entries = append(tx.entries, &e)

	return nil
}

// GetByTransaction returns the committed entries of a transaction in insertion order.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneEntries(s.entries[transactionID]), nil
}

// GetByTransactions returns entries grouped by transaction id.
func (r *EntryRepository) GetByTransactions(ctx context.Context, transactionIDs []string) (map[string][]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]*domain.Entry, len(transactionIDs))
	for _, id := range transactionIDs {
		if entries, ok := s.entries[id]; ok {
			result[id] = cloneEntries(entries)
		}
	}

	return result, nil
}

func cloneEntries(entries []*domain.Entry) []*domain.Entry {
	out := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		c := *e
		out = append(out, &c)
	}
	return out
}
