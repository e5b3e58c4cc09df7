package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// EntryTotals sums the owner's committed debits and credits.
func (r *LedgerRepository) EntryTotals(ctx context.Context, ownerID string) (decimal.Decimal, decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	debits, credits := decimal.Zero, decimal.Zero
	for id, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}

		for _, e := range s.entries[id] {
			switch e.Kind {
			case domain.EntryKindDebit:
				debits = debits.Add(e.Amount)
			case domain.EntryKindCredit:
				credits = credits.Add(e.Amount)
			}
		}
	}

	return debits, credits, nil
}

// BalanceChecks recomputes every owner account's balance from its entries.
func (r *LedgerRepository) BalanceChecks(ctx context.Context, ownerID string) ([]domain.BalanceCheck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]decimal.Decimal)
	for id, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}

		for _, e := range s.entries[id] {
			sums[e.AccountID] = sums[e.AccountID].Add(e.SignedAmount())
		}
	}

	checks := make([]domain.BalanceCheck, 0)
	for _, acc := range s.accounts {
		if acc.OwnerID != ownerID {
			continue
		}

		calculated, ok := sums[acc.ID]
		if !ok {
			calculated = decimal.Zero
		}

		checks = append(checks, domain.BalanceCheck{
			AccountID:  acc.ID,
			Name:       acc.Name,
			Recorded:   acc.Balance,
			Calculated: calculated,
		})
	}

	sort.Slice(checks, func(i, j int) bool { return checks[i].AccountID < checks[j].AccountID })

	return checks, nil
}
