package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("memory: account %s already exists", account.ID)
	}

	s.accounts[account.ID] = account.Clone()

	return nil
}

// GetByID retrieves an account owned by ownerID.
func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok || acc.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}

	return acc.Clone(), nil
}

// GetByIDsForUpdate locks the owner's accounts among ids in ascending id order
// and returns them with the transaction's staged deltas applied.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, t usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	tx, err := r.store.asTx(t)
	if err != nil {
		return nil, err
	}

	owned := r.store.ownedAccountIDs(ownerID, ids)

	for _, id := range owned {
		if err := tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(owned))
	for _, id := range owned {
		accounts = append(accounts, tx.view(s.accounts[id]))
	}

	return accounts, nil
}

// ApplyBalanceDelta stages delta against the account. The account is locked
// for the rest of the transaction if it was not already.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, t usecase.Transaction, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*domain.Account, error) {
	tx, err := r.store.asTx(t)
	if err != nil {
		return nil, err
	}

	if len(r.store.ownedAccountIDs(ownerID, []string{id})) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	if err := tx.lock(ctx, id); err != nil {
		return nil, err
	}

	d, ok := tx.deltas[id]
	if !ok {
		d = &stagedDelta{amount: decimal.Zero}
		tx.deltas[id] = d
	}

	d.amount = d.amount.Add(delta)
	d.count++
	d.updatedAt = updatedAt

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return tx.view(s.accounts[id]), nil
}

// view returns a copy of acc as seen from inside tx.
func (tx *Tx) view(acc *domain.Account) *domain.Account {
	c := acc.Clone()

	if d, ok := tx.deltas[acc.ID]; ok {
		c.Balance = c.Balance.Add(d.amount)
		c.Version += d.count
		c.UpdatedAt = d.updatedAt
	}

	return c
}

// Update writes name, description, currency and updated_at.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[account.ID]
	if !ok || acc.OwnerID != account.OwnerID {
		return domain.ErrAccountNotFound
	}

	acc.Name = account.Name
	acc.Description = account.Description
	acc.Currency = account.Currency
	acc.UpdatedAt = account.UpdatedAt

	return nil
}

// List returns the owner's accounts matching filter, ordered by name then id.
func (r *AccountRepository) List(ctx context.Context, ownerID string, filter domain.AccountFilter) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.OwnerID == ownerID && filter.Matches(acc) {
			accounts = append(accounts, acc.Clone())
		}
	}

	// Byte-wise, as the PostgreSQL query orders with COLLATE "C".
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return accounts[i].ID < accounts[j].ID
	})

	return accounts, nil
}
