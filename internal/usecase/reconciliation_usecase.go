package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	Name              string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	OwnerID              string
	TotalDebits          decimal.Decimal
	TotalCredits         decimal.Decimal
	Balanced             bool
	TotalAccounts        int
	ReconciledAccounts   int
	UnreconciledAccounts int
	Results              []*ReconciliationResult
	Consistent           bool
	CheckedAt            time.Time
}

// CheckConsistency verifies that the owner's debits equal credits and that
// every stored balance equals the signed sum of its entries. It never writes.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context, ownerID string) (*ReconciliationReport, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	totalDebits, totalCredits, err := uc.ledgerRepo.EntryTotals(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	checks, err := uc.ledgerRepo.BalanceChecks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		OwnerID:       ownerID,
		TotalDebits:   totalDebits,
		TotalCredits:  totalCredits,
		Balanced:      totalDebits.Equal(totalCredits),
		TotalAccounts: len(checks),
		Results:       make([]*ReconciliationResult, 0, len(checks)),
		CheckedAt:     time.Now().UTC(),
	}

	for _, c := range checks {
		result := &ReconciliationResult{
			AccountID:         c.AccountID,
			Name:              c.Name,
			RecordedBalance:   c.Recorded,
			CalculatedBalance: c.Calculated,
			Difference:        c.Difference(),
			IsReconciled:      c.IsReconciled(),
		}

		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.UnreconciledAccounts++
		}

		report.Results = append(report.Results, result)
	}

	report.Consistent = report.Balanced && report.UnreconciledAccounts == 0

	return report, nil
}
