package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/adapter/repository/postgres"
	"github.com/iho/fintrack/internal/domain"
	pginfra "github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/usecase"
)

const migrationsPath = "../../../infrastructure/postgres/migrations"

type pgLedger struct {
	accounts       *usecase.AccountUseCase
	processor      *usecase.TransactionUseCase
	summary        *usecase.SummaryUseCase
	reconciliation *usecase.ReconciliationUseCase
	outbox         *postgres.OutboxRepository
}

// newPgLedger connects to DATABASE_URL and applies migrations. Each test uses
// a fresh owner id, so no truncation is needed.
func newPgLedger(t *testing.T) *pgLedger {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, pginfra.RunMigrations(dbURL, migrationsPath))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ids := postgres.NewULIDGenerator()
	accountRepo := postgres.NewAccountRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	return &pgLedger{
		accounts: usecase.NewAccountUseCase(accountRepo, ids, usecase.DefaultCurrency),
		processor: usecase.NewTransactionUseCase(
			postgres.NewTxManager(pool),
			accountRepo,
			postgres.NewTransactionRepository(pool),
			postgres.NewEntryRepository(pool),
			outboxRepo,
			ids,
		),
		summary:        usecase.NewSummaryUseCase(accountRepo),
		reconciliation: usecase.NewReconciliationUseCase(postgres.NewLedgerRepository(pool)),
		outbox:         outboxRepo,
	}
}

func (l *pgLedger) open(t *testing.T, owner, name string, typ domain.AccountType) *domain.Account {
	t.Helper()

	acc, err := l.accounts.CreateAccount(context.Background(), owner, usecase.CreateAccountInput{
		Name: name,
		Type: string(typ),
	})
	require.NoError(t, err)

	return acc
}

func entry(accountID, amount string, kind domain.EntryKind) domain.DraftEntry {
	return domain.DraftEntry{AccountID: accountID, Amount: decimal.RequireFromString(amount), Kind: kind}
}

func TestPostgresCommitAndReconcile(t *testing.T) {
	l := newPgLedger(t)
	ctx := context.Background()
	owner := "owner-" + ulid.Make().String()

	checking := l.open(t, owner, "Checking", domain.AccountTypeAsset)
	salary := l.open(t, owner, "Salary", domain.AccountTypeRevenue)

	committed, err := l.processor.Submit(ctx, owner, domain.Draft{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Salary",
		Entries: []domain.DraftEntry{
			entry(checking.ID, "500.00", domain.EntryKindDebit),
			entry(salary.ID, "500.00", domain.EntryKindCredit),
		},
	})
	require.NoError(t, err)
	require.Len(t, committed.Entries, 2)

	got, err := l.accounts.GetAccount(ctx, owner, checking.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("500")), "checking balance %s", got.Balance)

	got, err = l.accounts.GetAccount(ctx, owner, salary.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("-500")), "salary balance %s", got.Balance)

	stored, err := l.processor.GetTransaction(ctx, owner, committed.ID)
	require.NoError(t, err)
	require.Len(t, stored.Entries, 2)
	assert.Equal(t, checking.ID, stored.Entries[0].AccountID)
	assert.Equal(t, salary.ID, stored.Entries[1].AccountID)

	report, err := l.reconciliation.CheckConsistency(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.True(t, report.Balanced)
	assert.Equal(t, 2, report.TotalAccounts)

	summary, err := l.summary.Summarize(ctx, owner)
	require.NoError(t, err)
	assert.True(t, summary.TotalAssets.Equal(decimal.RequireFromString("500")))

	events, err := l.outbox.GetUnpublished(ctx, 1000)
	require.NoError(t, err)

	found := false
	for _, ev := range events {
		if ev.AggregateID == committed.ID {
			found = true
			assert.Equal(t, domain.EventTypeTransactionCommitted, ev.EventType)
			assert.Equal(t, owner, ev.Payload["owner_id"])
		}
	}
	assert.True(t, found, "expected an outbox event for the committed transaction")
}

func TestPostgresRejectsForeignAccount(t *testing.T) {
	l := newPgLedger(t)
	ctx := context.Background()
	alice := "owner-" + ulid.Make().String()
	bob := "owner-" + ulid.Make().String()

	aliceCash := l.open(t, alice, "Cash", domain.AccountTypeAsset)
	bobCash := l.open(t, bob, "Cash", domain.AccountTypeAsset)

	_, err := l.processor.Submit(ctx, alice, domain.Draft{
		Date:        time.Now(),
		Description: "Steal",
		Entries: []domain.DraftEntry{
			entry(aliceCash.ID, "10", domain.EntryKindDebit),
			entry(bobCash.ID, "10", domain.EntryKindCredit),
		},
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	got, err := l.accounts.GetAccount(ctx, bob, bobCash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestPostgresConcurrentCommitsKeepBalances(t *testing.T) {
	l := newPgLedger(t)
	ctx := context.Background()
	owner := "owner-" + ulid.Make().String()

	cash := l.open(t, owner, "Cash", domain.AccountTypeAsset)
	income := l.open(t, owner, "Income", domain.AccountTypeRevenue)

	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.processor.Submit(ctx, owner, domain.Draft{
				Date:        time.Now(),
				Description: "Tip",
				Entries: []domain.DraftEntry{
					entry(cash.ID, "1.25", domain.EntryKindDebit),
					entry(income.ID, "1.25", domain.EntryKindCredit),
				},
			})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := l.accounts.GetAccount(ctx, owner, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("25")), "cash balance %s", got.Balance)

	report, err := l.reconciliation.CheckConsistency(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}
