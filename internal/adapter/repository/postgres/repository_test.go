package postgres

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()

	pool.ExpectBeginTx(ledgerTxOptions)

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	return tx.(*Tx)
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("acc-1", "owner-1").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(pool)
	_, err := repo.GetByID(context.Background(), "owner-1", "acc-1")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found class, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByIDPassesThroughErrors(t *testing.T) {
	pool := newMockPool(t)
	dbErr := errors.New("connection reset")
	pool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("acc-1", "owner-1").
		WillReturnError(dbErr)

	repo := NewAccountRepository(pool)
	_, err := repo.GetByID(context.Background(), "owner-1", "acc-1")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected driver error, got %v", err)
	}

	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("driver error must not be reported as not found")
	}
}

func TestAccountRepositoryUpdateMetadataOnly(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", "owner-1", "Savings", "rainy day", "EUR", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewAccountRepository(pool)
	err := repo.Update(context.Background(), &domain.Account{
		ID:          "acc-1",
		OwnerID:     "owner-1",
		Name:        "Savings",
		Description: "rainy day",
		Currency:    "EUR",
		Balance:     decimal.NewFromInt(999),
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryListOrdersByteWise(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta(`ORDER BY name COLLATE "C", id`)).
		WithArgs("owner-1", "", "").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "owner_id", "name", "description", "type", "currency", "balance", "version", "created_at", "updated_at",
		}))

	accounts, err := NewAccountRepository(pool).List(context.Background(), "owner-1", domain.AccountFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 0 {
		t.Fatalf("expected no accounts, got %d", len(accounts))
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdateMissingAccount(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("UPDATE accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewAccountRepository(pool)
	err := repo.Update(context.Background(), &domain.Account{ID: "missing", OwnerID: "owner-1"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepositoryApplyBalanceDeltaNotFound(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	delta := decimal.RequireFromString("-12.50")

	pool.ExpectQuery("UPDATE accounts").
		WithArgs(decimalToNumeric(delta), pgxmock.AnyArg(), "acc-1", "owner-1").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(pool)
	_, err := repo.ApplyBalanceDelta(context.Background(), tx, "owner-1", "acc-1", delta, time.Now())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestRepositoriesRejectForeignTransaction(t *testing.T) {
	pool := newMockPool(t)
	ctx := context.Background()

	accounts := NewAccountRepository(pool)
	if _, err := accounts.GetByIDsForUpdate(ctx, foreignTx{}, "owner-1", []string{"a"}); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("GetByIDsForUpdate: expected ErrForeignTx, got %v", err)
	}

	if _, err := accounts.ApplyBalanceDelta(ctx, foreignTx{}, "owner-1", "a", decimal.NewFromInt(1), time.Now()); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("ApplyBalanceDelta: expected ErrForeignTx, got %v", err)
	}

	if err := NewTransactionRepository(pool).Create(ctx, foreignTx{}, &domain.Transaction{}); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("TransactionRepository.Create: expected ErrForeignTx, got %v", err)
	}

	if err := NewEntryRepository(pool).Create(ctx, foreignTx{}, &domain.Entry{}); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("EntryRepository.Create: expected ErrForeignTx, got %v", err)
	}

	if err := NewOutboxRepository(pool).Create(ctx, foreignTx{}, &domain.OutboxEvent{}); !errors.Is(err, ErrForeignTx) {
		t.Fatalf("OutboxRepository.Create: expected ErrForeignTx, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestCommitWritesInsideTransaction(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("100.25")

	pool.ExpectExec("INSERT INTO transactions").
		WithArgs("tx-1", "owner-1", timeToPgTimestamptz(date), "Groceries", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO entries").
		WithArgs("e-1", "tx-1", "acc-1", decimalToNumeric(amount), "debit", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("ev-1", "tx-1", domain.AggregateTypeTransaction, domain.EventTypeTransactionCommitted, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	err := NewTransactionRepository(pool).Create(ctx, tx, &domain.Transaction{
		ID:          "tx-1",
		OwnerID:     "owner-1",
		Date:        date,
		Description: "Groceries",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	err = NewEntryRepository(pool).Create(ctx, tx, &domain.Entry{
		ID:            "e-1",
		TransactionID: "tx-1",
		AccountID:     "acc-1",
		Amount:        amount,
		Kind:          domain.EntryKindDebit,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	err = NewOutboxRepository(pool).Create(ctx, tx, &domain.OutboxEvent{
		ID:            "ev-1",
		AggregateID:   "tx-1",
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionCommitted,
		Payload:       map[string]any{"transaction_id": "tx-1"},
	})
	if err != nil {
		t.Fatalf("create outbox event: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM transactions WHERE id").
		WithArgs("tx-1", "owner-2").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewTransactionRepository(pool).GetByID(context.Background(), "owner-2", "tx-1")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionRepositoryListPassesFilter(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM transactions t").
		WithArgs("owner-1", "rent", "credit", int32(20), int32(40)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "transaction_date", "description", "created_at", "updated_at"}))

	got, err := NewTransactionRepository(pool).List(context.Background(), "owner-1", domain.TransactionFilter{
		Search: "rent",
		Kind:   domain.EntryKindCredit,
		Limit:  20,
		Offset: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 0 {
		t.Fatalf("expected no transactions, got %d", len(got))
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListSaturatesOffset(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM transactions t").
		WithArgs("owner-1", "", "", int32(50), int32(math.MaxInt32)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "transaction_date", "description", "created_at", "updated_at"}))

	_, err := NewTransactionRepository(pool).List(context.Background(), "owner-1", domain.TransactionFilter{
		Limit:  50,
		Offset: math.MaxInt32 + 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryMarkPublished(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("ev-1", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := NewOutboxRepository(pool).MarkPublished(context.Background(), "ev-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublishedDecodesPayload(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	columns := []string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published", "published_at"}

	pool.ExpectQuery("FROM outbox_events WHERE published = FALSE").
		WithArgs(int32(math.MaxInt32)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			"ev-1", "tx-1", domain.AggregateTypeTransaction, domain.EventTypeTransactionCommitted,
			[]byte(`{"transaction_id":"tx-1"}`), timeToPgTimestamptz(created), false, pgtype.Timestamptz{},
		))

	events, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if got := events[0].Payload["transaction_id"]; got != "tx-1" {
		t.Fatalf("payload transaction_id = %v", got)
	}

	if events[0].PublishedAt != nil || !events[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected timestamps: %+v", events[0])
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublishedRejectsCorruptPayload(t *testing.T) {
	pool := newMockPool(t)
	columns := []string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published", "published_at"}

	pool.ExpectQuery("FROM outbox_events WHERE published = FALSE").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			"ev-9", "tx-9", domain.AggregateTypeTransaction, domain.EventTypeTransactionCommitted,
			[]byte(`{not json`), timeToPgTimestamptz(time.Now()), false, pgtype.Timestamptz{},
		))

	if _, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 10); err == nil {
		t.Fatalf("expected decode error for ev-9")
	}
}

func TestLedgerRepositoryPropagatesErrors(t *testing.T) {
	pool := newMockPool(t)
	dbErr := errors.New("statement timeout")

	pool.ExpectQuery("FROM entries e").WithArgs("owner-1").WillReturnError(dbErr)
	pool.ExpectQuery("FROM accounts a").WithArgs("owner-1").WillReturnError(dbErr)

	repo := NewLedgerRepository(pool)

	if _, _, err := repo.EntryTotals(context.Background(), "owner-1"); !errors.Is(err, dbErr) {
		t.Fatalf("EntryTotals: expected %v, got %v", dbErr, err)
	}

	if _, err := repo.BalanceChecks(context.Background(), "owner-1"); !errors.Is(err, dbErr) {
		t.Fatalf("BalanceChecks: expected %v, got %v", dbErr, err)
	}

	assertExpectations(t, pool)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "100.25", "-12.50", "0.0001", "123456789.987654321"} {
		d := decimal.RequireFromString(s)
		if got := numericToDecimal(decimalToNumeric(d)); !got.Equal(d) {
			t.Fatalf("round trip of %s gave %s", s, got)
		}
	}
}
