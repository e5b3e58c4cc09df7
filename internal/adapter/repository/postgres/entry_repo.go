package postgres

import (
	"context"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// Create creates a new entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:            entry.ID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Amount:        decimalToNumeric(entry.Amount),
		Kind:          string(entry.Kind),
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByTransaction retrieves the entries of a transaction.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// GetByTransactions retrieves entries for several transactions in one query.
func (r *EntryRepository) GetByTransactions(ctx context.Context, transactionIDs []string) (map[string][]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByTransactions(ctx, transactionIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*domain.Entry, len(transactionIDs))
	for _, row := range rows {
		grouped[row.TransactionID] = append(grouped[row.TransactionID], rowToEntry(row))
	}

	return grouped, nil
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:            row.ID,
		TransactionID: row.TransactionID,
		AccountID:     row.AccountID,
		Amount:        numericToDecimal(row.Amount),
		Kind:          domain.EntryKind(row.Kind),
		CreatedAt:     row.CreatedAt.Time,
	}
}
