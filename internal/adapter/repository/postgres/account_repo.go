package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:          account.ID,
		OwnerID:     account.OwnerID,
		Name:        account.Name,
		Description: account.Description,
		Type:        string(account.Type),
		Currency:    account.Currency,
		Balance:     decimalToNumeric(account.Balance),
		Version:     account.Version,
		CreatedAt:   timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(account.UpdatedAt),
	})

	return err
}

// GetByID retrieves an account owned by ownerID.
func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, generated.GetAccountByIDParams{
		ID:      id,
		OwnerID: ownerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate locks the owner's accounts with SELECT ... FOR UPDATE in id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, generated.GetAccountsByIDsForUpdateParams{
		OwnerID: ownerID,
		Ids:     ids,
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// ApplyBalanceDelta increments the balance in place, so concurrent writers
// cannot lose updates even without a prior lock.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, tx usecase.Transaction, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.ApplyAccountBalanceDelta(ctx, generated.ApplyAccountBalanceDeltaParams{
		Delta:     decimalToNumeric(delta),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		ID:        id,
		OwnerID:   ownerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// Update writes the account metadata.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	affected, err := r.queries.UpdateAccountMetadata(ctx, generated.UpdateAccountMetadataParams{
		ID:          account.ID,
		OwnerID:     account.OwnerID,
		Name:        account.Name,
		Description: account.Description,
		Currency:    account.Currency,
		UpdatedAt:   timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists the owner's accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context, ownerID string, filter domain.AccountFilter) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		OwnerID:      ownerID,
		Type:         string(filter.Type),
		NameContains: filter.NameContains,
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Name:        row.Name,
		Description: row.Description,
		Type:        domain.AccountType(row.Type),
		Currency:    row.Currency,
		Balance:     numericToDecimal(row.Balance),
		Version:     row.Version,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
