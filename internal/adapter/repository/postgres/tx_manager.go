package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// ledgerTxOptions is used for every commit. Account rows are locked with
// SELECT ... FOR UPDATE, so read committed is enough to serialize balance
// updates on the same account.
var ledgerTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.ReadCommitted,
	AccessMode: pgx.ReadWrite,
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager opens the storage transaction a ledger commit runs in. Locks
// taken through AccountRepository.GetByIDsForUpdate are held until the
// returned Tx is committed or rolled back.
type TxManager struct {
	db txBeginner
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(db txBeginner) *TxManager {
	return &TxManager{db: db}
}

// Begin starts a read-write transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.db.BeginTx(ctx, ledgerTxOptions)
	if err != nil {
		return nil, fmt.Errorf("begin ledger transaction: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx is a usecase.Transaction backed by pgx. Once it has been committed or
// rolled back, further Rollback calls are no-ops, so callers may always defer
// Rollback.
type Tx struct {
	tx   pgx.Tx
	done bool
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}

	err := t.tx.Commit(ctx)
	t.done = true
	if err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}

	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.done = true
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback ledger transaction: %w", err)
	}

	return nil
}

func (t *Tx) queries() *generated.Queries {
	return generated.New(t.tx)
}
