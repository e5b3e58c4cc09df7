package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// AccountUseCase is the account registry. It owns account records and their
// metadata; balances change only through the transaction processor.
type AccountUseCase struct {
	accountRepo     AccountRepository
	idGen           IDGenerator
	metrics         MetricsRecorder
	defaultCurrency string
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, defaultCurrency string) *AccountUseCase {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	return &AccountUseCase{
		accountRepo:     accountRepo,
		idGen:           idGen,
		metrics:         nopMetrics{},
		defaultCurrency: domain.NormalizeCurrency(defaultCurrency),
	}
}

// SetMetrics installs a metrics recorder.
func (uc *AccountUseCase) SetMetrics(m MetricsRecorder) {
	if m != nil {
		uc.metrics = m
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name        string
	Description string
	Type        string
	Currency    string
}

// CreateAccount creates a new account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, ownerID string, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	currency := domain.NormalizeCurrency(input.Currency)
	if currency == "" {
		currency = uc.defaultCurrency
	}

	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:          uc.idGen.Generate(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Type:        accountType,
		Currency:    currency,
		Balance:     decimal.Zero,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.metrics.AccountCreated(accountType)

	return account, nil
}

// GetAccount retrieves one of the owner's accounts.
func (uc *AccountUseCase) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	return uc.accountRepo.GetByID(ctx, ownerID, id)
}

// UpdateAccount changes the name, description or currency of an account. The
// classification is fixed at creation.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, ownerID, id string, update domain.AccountUpdate) (*domain.Account, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	if update.Name != nil {
		if err := domain.ValidateAccountName(*update.Name); err != nil {
			return nil, err
		}
	}

	if update.Currency != nil {
		if err := domain.ValidateCurrency(*update.Currency); err != nil {
			return nil, err
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() {
		return account, nil
	}

	if update.Name != nil {
		account.Name = strings.TrimSpace(*update.Name)
	}

	if update.Description != nil {
		account.Description = strings.TrimSpace(*update.Description)
	}

	if update.Currency != nil {
		account.Currency = domain.NormalizeCurrency(*update.Currency)
	}

	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// ListAccounts returns a snapshot of the owner's accounts ordered by name.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string, filter domain.AccountFilter) ([]*domain.Account, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, domain.ErrInvalidAccountType
	}

	filter.NameContains = strings.TrimSpace(filter.NameContains)

	return uc.accountRepo.List(ctx, ownerID, filter)
}
