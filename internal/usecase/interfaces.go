package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// AccountRepository defines data access for accounts. Every read and write is
// scoped by owner; an account owned by someone else behaves as missing.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the owner's accounts among ids in sorted order.
	// Ids that do not resolve are omitted from the result.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ownerID string, ids []string) ([]*domain.Account, error)
	// ApplyBalanceDelta atomically adds delta to the balance and bumps the version.
	ApplyBalanceDelta(ctx context.Context, tx Transaction, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*domain.Account, error)
	// Update writes the metadata fields only. Balance and version are untouched.
	Update(ctx context.Context, account *domain.Account) error
	List(ctx context.Context, ownerID string, filter domain.AccountFilter) ([]*domain.Account, error)
}

// TransactionRepository defines data access for committed transactions.
// Returned transactions carry no entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error)
	GetByTransactions(ctx context.Context, transactionIDs []string) (map[string][]*domain.Entry, error)
}

// LedgerRepository defines read-only ledger-wide queries for one owner.
type LedgerRepository interface {
	EntryTotals(ctx context.Context, ownerID string) (totalDebits, totalCredits decimal.Decimal, err error)
	// BalanceChecks pairs every account's stored balance with the signed sum of
	// its entries, read from a single snapshot.
	BalanceChecks(ctx context.Context, ownerID string) ([]domain.BalanceCheck, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder observes ledger outcomes.
type MetricsRecorder interface {
	AccountCreated(accountType domain.AccountType)
	TransactionCommitted(entries int, duration time.Duration)
	TransactionRejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) AccountCreated(domain.AccountType) {}
func (nopMetrics) TransactionCommitted(int, time.Duration) {}
func (nopMetrics) TransactionRejected(string) {}
