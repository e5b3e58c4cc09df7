package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
	"github.com/iho/fintrack/internal/usecase/mocks"
)

type processorMocks struct {
	txManager       *mocks.MockTransactionManager
	tx              *mocks.MockTransaction
	accountRepo     *mocks.MockAccountRepository
	transactionRepo *mocks.MockTransactionRepository
	entryRepo       *mocks.MockEntryRepository
	outboxRepo      *mocks.MockOutboxRepository
	idGen           *mocks.MockIDGenerator
	metrics         *mocks.MockMetricsRecorder
}

func newProcessor(ctrl *gomock.Controller) (*usecase.TransactionUseCase, processorMocks) {
	m := processorMocks{
		txManager:       mocks.NewMockTransactionManager(ctrl),
		tx:              mocks.NewMockTransaction(ctrl),
		accountRepo:     mocks.NewMockAccountRepository(ctrl),
		transactionRepo: mocks.NewMockTransactionRepository(ctrl),
		entryRepo:       mocks.NewMockEntryRepository(ctrl),
		outboxRepo:      mocks.NewMockOutboxRepository(ctrl),
		idGen:           mocks.NewMockIDGenerator(ctrl),
		metrics:         mocks.NewMockMetricsRecorder(ctrl),
	}

	uc := usecase.NewTransactionUseCase(
		m.txManager,
		m.accountRepo,
		m.transactionRepo,
		m.entryRepo,
		m.outboxRepo,
		m.idGen,
		usecase.WithMetrics(m.metrics),
	)

	return uc, m
}

func salaryDraft() domain.Draft {
	return domain.Draft{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "March salary",
		Entries: []domain.DraftEntry{
			{AccountID: "salary", Amount: decimal.RequireFromString("500.00"), Kind: domain.EntryKindCredit},
			{AccountID: "checking", Amount: decimal.RequireFromString("500.00"), Kind: domain.EntryKindDebit},
		},
	}
}

func TestTransactionUseCase_Submit_CommitProtocol(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	ids := 0
	m.idGen.EXPECT().Generate().DoAndReturn(func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}).Times(4)

	gomock.InOrder(
		m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", []string{"checking", "salary"}).
			Return([]*domain.Account{{ID: "checking"}, {ID: "salary"}}, nil),
		m.transactionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		m.entryRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2),
		m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", "salary", decimal.RequireFromString("-500.00"), gomock.Any()).
			Return(&domain.Account{}, nil),
		m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", "checking", decimal.RequireFromString("500.00"), gomock.Any()).
			Return(&domain.Account{}, nil),
		m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
				if e.EventType != domain.EventTypeTransactionCommitted {
					t.Errorf("unexpected event type %s", e.EventType)
				}
				return nil
			}),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().TransactionCommitted(2, gomock.Any())

	transaction, err := uc.Submit(context.Background(), "owner-1", salaryDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(transaction.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(transaction.Entries))
	}

	for _, e := range transaction.Entries {
		if e.TransactionID != transaction.ID {
			t.Errorf("entry %s not linked to transaction %s", e.ID, transaction.ID)
		}
	}
}

func TestTransactionUseCase_Submit_ValidationFailureTouchesNoStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)
	m.metrics.EXPECT().TransactionRejected("validation")

	draft := salaryDraft()
	draft.Entries[1].Amount = decimal.RequireFromString("50.00")

	_, err := uc.Submit(context.Background(), "owner-1", draft)
	if !errors.Is(err, domain.ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
}

func TestTransactionUseCase_Submit_MissingOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newProcessor(ctrl)

	_, err := uc.Submit(context.Background(), "", salaryDraft())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTransactionUseCase_Submit_ForeignAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
		Return([]*domain.Account{{ID: "checking"}}, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().TransactionRejected("not_found")

	_, err := uc.Submit(context.Background(), "owner-1", salaryDraft())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTransactionUseCase_Submit_BalanceOutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
		Return([]*domain.Account{
			{ID: "checking", Balance: domain.MaxAmount.Sub(decimal.RequireFromString("100.00"))},
			{ID: "salary"},
		}, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().TransactionRejected("validation")

	_, err := uc.Submit(context.Background(), "owner-1", salaryDraft())
	if !errors.Is(err, domain.ErrBalanceOutOfRange) {
		t.Fatalf("expected ErrBalanceOutOfRange, got %v", err)
	}
}

func TestTransactionUseCase_Submit_RejectsSubCentAmounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)
	m.metrics.EXPECT().TransactionRejected("validation")

	draft := salaryDraft()
	draft.Entries[0].Amount = decimal.RequireFromString("500.005")
	draft.Entries[1].Amount = decimal.RequireFromString("500.005")

	_, err := uc.Submit(context.Background(), "owner-1", draft)
	if !errors.Is(err, domain.ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}
}

func TestTransactionUseCase_Submit_StorageFailuresRollBack(t *testing.T) {
	storageErr := errors.New("connection reset by peer")

	tests := []struct {
		name  string
		setup func(m processorMocks)
	}{
		{
			name: "begin fails",
			setup: func(m processorMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(nil, storageErr)
			},
		},
		{
			name: "entry insert fails",
			setup: func(m processorMocks) {
				m.idGen.EXPECT().Generate().Return("id").AnyTimes()
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
					Return([]*domain.Account{{ID: "checking"}, {ID: "salary"}}, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.entryRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(storageErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name: "second balance update fails",
			setup: func(m processorMocks) {
				m.idGen.EXPECT().Generate().Return("id").AnyTimes()
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
					Return([]*domain.Account{{ID: "checking"}, {ID: "salary"}}, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.entryRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
				gomock.InOrder(
					m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", gomock.Any(), gomock.Any(), gomock.Any()).
						Return(&domain.Account{}, nil),
					m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", gomock.Any(), gomock.Any(), gomock.Any()).
						Return(nil, storageErr),
				)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name: "commit fails",
			setup: func(m processorMocks) {
				m.idGen.EXPECT().Generate().Return("id").AnyTimes()
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
					Return([]*domain.Account{{ID: "checking"}, {ID: "salary"}}, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.entryRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
				m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&domain.Account{}, nil).Times(2)
				m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit(gomock.Any()).Return(storageErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc, m := newProcessor(ctrl)
			tt.setup(m)
			m.metrics.EXPECT().TransactionRejected("persistence")

			_, err := uc.Submit(context.Background(), "owner-1", salaryDraft())

			if !errors.Is(err, domain.ErrPersistence) {
				t.Fatalf("expected persistence error, got %v", err)
			}
			if !errors.Is(err, storageErr) {
				t.Fatalf("expected cause to be preserved, got %v", err)
			}
		})
	}
}

func TestTransactionUseCase_Submit_CancelledBeforeBegin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)
	m.metrics.EXPECT().TransactionRejected("persistence")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Submit(ctx, "owner-1", salaryDraft())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTransactionUseCase_Submit_CommitIgnoresCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	ctx, cancel := context.WithCancel(context.Background())

	m.idGen.EXPECT().Generate().Return("id").AnyTimes()
	m.txManager.EXPECT().Begin(gomock.Any()).DoAndReturn(func(c context.Context) (usecase.Transaction, error) {
		// The caller gives up once the storage transaction has started.
		cancel()
		return m.tx, nil
	})
	m.accountRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "owner-1", gomock.Any()).
		DoAndReturn(func(c context.Context, _ usecase.Transaction, _ string, _ []string) ([]*domain.Account, error) {
			if c.Err() != nil {
				t.Errorf("commit context was cancelled with the caller: %v", c.Err())
			}
			return []*domain.Account{{ID: "checking"}, {ID: "salary"}}, nil
		})
	m.transactionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entryRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.accountRepo.EXPECT().ApplyBalanceDelta(gomock.Any(), m.tx, "owner-1", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.Account{}, nil).Times(2)
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().TransactionCommitted(2, gomock.Any())

	if _, err := uc.Submit(ctx, "owner-1", salaryDraft()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionUseCase_ListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	m.transactionRepo.EXPECT().List(gomock.Any(), "owner-1", domain.TransactionFilter{
		Search: "rent",
		Kind:   domain.EntryKindDebit,
		Limit:  domain.DefaultPageSize,
		Offset: 0,
	}).Return([]*domain.Transaction{{ID: "tx-2"}, {ID: "tx-1"}}, nil)
	m.entryRepo.EXPECT().GetByTransactions(gomock.Any(), []string{"tx-2", "tx-1"}).Return(map[string][]*domain.Entry{
		"tx-1": {{ID: "e1"}, {ID: "e2"}},
		"tx-2": {{ID: "e3"}, {ID: "e4"}},
	}, nil)

	transactions, err := uc.ListTransactions(context.Background(), "owner-1", domain.TransactionFilter{
		Search: " rent ",
		Kind:   domain.EntryKindDebit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(transactions) != 2 || len(transactions[0].Entries) != 2 {
		t.Fatalf("expected entries attached, got %+v", transactions)
	}

	if _, err := uc.ListTransactions(context.Background(), "owner-1", domain.TransactionFilter{Kind: "both"}); !errors.Is(err, domain.ErrInvalidEntryKind) {
		t.Errorf("expected ErrInvalidEntryKind, got %v", err)
	}
}

func TestTransactionUseCase_ListTransactionsClampsOffset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	m.transactionRepo.EXPECT().List(gomock.Any(), "owner-1", domain.TransactionFilter{
		Limit:  domain.DefaultPageSize,
		Offset: domain.MaxPageOffset,
	}).Return(nil, nil)

	transactions, err := uc.ListTransactions(context.Background(), "owner-1", domain.TransactionFilter{
		Offset: 1 << 32,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(transactions) != 0 {
		t.Fatalf("expected an empty page, got %d", len(transactions))
	}
}

func TestTransactionUseCase_GetTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newProcessor(ctrl)

	m.transactionRepo.EXPECT().GetByID(gomock.Any(), "owner-1", "tx-1").Return(&domain.Transaction{ID: "tx-1"}, nil)
	m.entryRepo.EXPECT().GetByTransaction(gomock.Any(), "tx-1").Return([]*domain.Entry{{ID: "e1"}, {ID: "e2"}}, nil)
	m.transactionRepo.EXPECT().GetByID(gomock.Any(), "owner-2", "tx-1").Return(nil, domain.ErrTransactionNotFound)

	transaction, err := uc.GetTransaction(context.Background(), "owner-1", "tx-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transaction.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(transaction.Entries))
	}

	if _, err := uc.GetTransaction(context.Background(), "owner-2", "tx-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
