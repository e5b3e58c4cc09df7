package memory

import (
	"context"
	"sort"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// Create stages a transaction header.
func (r *TransactionRepository) Create(ctx context.Context, t usecase.Transaction, transaction *domain.Transaction) error {
	tx, err := r.store.asTx(t)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tx.transactions = append(tx.transactions, cloneHeader(transaction))

	return nil
}

// GetByID retrieves a committed transaction owned by ownerID.
func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}

	return cloneHeader(t), nil
}

// List returns the owner's transactions newest first.
func (r *TransactionRepository) List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}

		probe := cloneHeader(t)
		probe.Entries = s.entries[t.ID]

		if filter.Matches(probe) {
			matched = append(matched, cloneHeader(t))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if filter.Offset >= len(matched) {
		return []*domain.Transaction{}, nil
	}

	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

func cloneHeader(t *domain.Transaction) *domain.Transaction {
	c := *t
	c.Entries = nil
	return &c
}
