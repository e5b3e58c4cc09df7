package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// EntryTotals sums the owner's debit and credit entries.
func (r *LedgerRepository) EntryTotals(ctx context.Context, ownerID string) (totalDebits decimal.Decimal, totalCredits decimal.Decimal, err error) {
	result, err := r.queries.GetEntryTotals(ctx, ownerID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalDebits), numericToDecimal(result.TotalCredits), nil
}

// BalanceChecks compares stored balances with entry sums in a single statement.
func (r *LedgerRepository) BalanceChecks(ctx context.Context, ownerID string) ([]domain.BalanceCheck, error) {
	rows, err := r.queries.GetAccountBalanceChecks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	checks := make([]domain.BalanceCheck, 0, len(rows))
	for _, row := range rows {
		checks = append(checks, domain.BalanceCheck{
			AccountID:  row.ID,
			Name:       row.Name,
			Recorded:   numericToDecimal(row.Balance),
			Calculated: numericToDecimal(row.Calculated),
		})
	}

	return checks, nil
}
