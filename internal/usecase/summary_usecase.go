package usecase

import (
	"context"

	"github.com/iho/fintrack/internal/domain"
)

// SummaryUseCase computes dashboard figures. Results are recomputed from
// current balances on every call and never cached.
type SummaryUseCase struct {
	accountRepo AccountRepository
}

// NewSummaryUseCase creates a new SummaryUseCase.
func NewSummaryUseCase(accountRepo AccountRepository) *SummaryUseCase {
	return &SummaryUseCase{accountRepo: accountRepo}
}

// Summarize folds the owner's account balances into summary figures.
func (uc *SummaryUseCase) Summarize(ctx context.Context, ownerID string) (domain.Summary, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return domain.Summary{}, err
	}

	accounts, err := uc.accountRepo.List(ctx, ownerID, domain.AccountFilter{})
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summarize(accounts), nil
}
