package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionUseCase is the transaction processor. It validates drafts and
// commits them atomically: the transaction, its entries, every balance delta
// and the outbox event land together or not at all.
type TransactionUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	logger          zerolog.Logger
	metrics         MetricsRecorder
	commitTimeout   time.Duration
}

// TransactionOption configures a TransactionUseCase.
type TransactionOption func(*TransactionUseCase)

// WithCommitTimeout bounds the commit once the storage transaction has begun.
func WithCommitTimeout(d time.Duration) TransactionOption {
	return func(uc *TransactionUseCase) {
		if d > 0 {
			uc.commitTimeout = d
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) TransactionOption {
	return func(uc *TransactionUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger sets the logger used for submission state transitions.
func WithLogger(l zerolog.Logger) TransactionOption {
	return func(uc *TransactionUseCase) {
		uc.logger = l
	}
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...TransactionOption,
) *TransactionUseCase {
	uc := &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		entryRepo:       entryRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		logger:          zerolog.Nop(),
		metrics:         nopMetrics{},
		commitTimeout:   DefaultCommitTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Submit runs a draft through validation and the commit protocol.
func (uc *TransactionUseCase) Submit(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Transaction, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	start := time.Now()
	sub := domain.NewSubmission(ownerID, draft)
	log := uc.logger.With().Str("owner_id", ownerID).Int("entries", len(draft.Entries)).Logger()

	log.Debug().Str("state", string(sub.State)).Msg("submission received")

	if err := domain.ValidateDraft(draft); err != nil {
		return nil, uc.reject(log, sub, err)
	}

	sub.Advance(domain.SubmissionValidated)
	log.Debug().Str("state", string(sub.State)).Msg("submission validated")

	// Cancellation is honoured up to here. Once the storage transaction begins
	// the commit runs to completion or times out.
	if err := ctx.Err(); err != nil {
		return nil, uc.reject(log, sub, domain.NewPersistenceError("begin transaction", err))
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.commitTimeout)
	defer cancel()

	transaction, err := uc.commit(commitCtx, ownerID, draft)
	if err != nil {
		return nil, uc.reject(log, sub, err)
	}

	sub.Advance(domain.SubmissionCommitted)
	uc.metrics.TransactionCommitted(len(transaction.Entries), time.Since(start))

	log.Debug().
		Str("state", string(sub.State)).
		Str("transaction_id", transaction.ID).
		Msg("submission committed")

	return transaction, nil
}

func (uc *TransactionUseCase) commit(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Transaction, error) {
	// 1. Collect unique account IDs in sorted order (DEADLOCK PREVENTION)
	accountIDs := draft.AccountIDs()

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// 3. Lock accounts and check ownership
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ownerID, accountIDs)
	if err != nil {
		return nil, persistenceOrDomain("lock accounts", err)
	}

	if len(accounts) != len(accountIDs) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, missingAccounts(accountIDs, accounts))
	}

	if err := checkProjectedBalances(accounts, draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	transaction := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		OwnerID:     ownerID,
		Date:        draft.Date.UTC(),
		Description: strings.TrimSpace(draft.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, de := range draft.Entries {
		transaction.Entries = append(transaction.Entries, &domain.Entry{
			ID:            uc.idGen.Generate(),
			TransactionID: transaction.ID,
			AccountID:     de.AccountID,
			Amount:        de.Amount,
			Kind:          de.Kind,
			CreatedAt:     now,
		})
	}

	// 4. Persist transaction and entries
	if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
		return nil, domain.NewPersistenceError("insert transaction", err)
	}

	for _, entry := range transaction.Entries {
		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, domain.NewPersistenceError("insert entry", err)
		}
	}

	// 5. Apply balance deltas, one per entry
	for _, entry := range transaction.Entries {
		if _, err := uc.accountRepo.ApplyBalanceDelta(ctx, tx, ownerID, entry.AccountID, entry.SignedAmount(), now); err != nil {
			return nil, persistenceOrDomain("apply balance delta", err)
		}
	}

	// 6. Enqueue notification
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transaction.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionCommitted,
		Payload:       domain.NewTransactionCommittedPayload(transaction),
		CreatedAt:     now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, domain.NewPersistenceError("insert outbox event", err)
	}

	// 7. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewPersistenceError("commit", err)
	}

	return transaction, nil
}

func (uc *TransactionUseCase) reject(log zerolog.Logger, sub *domain.Submission, err error) error {
	sub.Reject(err)

	reason := rejectionReason(err)
	uc.metrics.TransactionRejected(reason)

	if reason == "persistence" {
		log.Error().Err(err).Str("state", string(sub.State)).Msg("submission rejected")
	} else {
		log.Info().Err(err).Str("state", string(sub.State)).Str("reason", reason).Msg("submission rejected")
	}

	return err
}

// ListTransactions returns the owner's transactions newest first, entries attached.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, domain.ErrInvalidEntryKind
	}

	filter.Search = strings.TrimSpace(filter.Search)
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	transactions, err := uc.transactionRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	if len(transactions) == 0 {
		return transactions, nil
	}

	ids := make([]string, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}

	entries, err := uc.entryRepo.GetByTransactions(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, t := range transactions {
		t.Entries = entries[t.ID]
	}

	return transactions, nil
}

// GetTransaction retrieves one of the owner's transactions with its entries.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if err := domain.RequireOwner(ownerID); err != nil {
		return nil, err
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.GetByTransaction(ctx, transaction.ID)
	if err != nil {
		return nil, err
	}

	transaction.Entries = entries

	return transaction, nil
}

// persistenceOrDomain keeps domain errors raised by a repository intact and
// wraps everything else as a persistence failure.
func persistenceOrDomain(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return domain.NewPersistenceError(op, err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}

// checkProjectedBalances rejects a draft that would push a locked account
// past MaxAmount in either direction. The balance column would otherwise
// overflow inside the commit and surface as a storage failure.
func checkProjectedBalances(accounts []*domain.Account, draft domain.Draft) error {
	projected := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		projected[a.ID] = a.Balance
	}

	for _, e := range draft.Entries {
		projected[e.AccountID] = projected[e.AccountID].Add(e.Kind.Signed(e.Amount))
	}

	for _, a := range accounts {
		if projected[a.ID].Abs().GreaterThan(domain.MaxAmount) {
			return fmt.Errorf("%w: account %s", domain.ErrBalanceOutOfRange, a.ID)
		}
	}

	return nil
}

func missingAccounts(ids []string, found []*domain.Account) string {
	present := make(map[string]bool, len(found))
	for _, a := range found {
		present[a.ID] = true
	}

	var missing []string
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}

	return strings.Join(missing, ", ")
}
