// Package memory is an in-process storage backend with the same
// transactional contract as the Postgres repositories.
//
// Writes made inside a Tx are staged and become visible in one step on
// Commit. Balance-affecting work holds a per-account lock from the moment the
// account is first touched until Commit or Rollback, and locks are always
// acquired in ascending id order within a single GetByIDsForUpdate call.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

var (
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("memory: transaction already committed or rolled back")
	// ErrForeignTx is returned when a repository receives a transaction it did not create.
	ErrForeignTx = errors.New("memory: transaction does not belong to this store")
)

// Store holds all ledger data in memory.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	transactions map[string]*domain.Transaction
	entries      map[string][]*domain.Entry
	outbox       []*domain.OutboxEvent

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
		entries:      make(map[string][]*domain.Entry),
		locks:        make(map[string]chan struct{}),
	}
}

// Begin starts a new transaction. Store implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:  s,
		held:   make(map[string]bool),
		deltas: make(map[string]*stagedDelta),
	}, nil
}

// Accounts returns an account repository backed by s.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Transactions returns a transaction repository backed by s.
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

// Entries returns an entry repository backed by s.
func (s *Store) Entries() *EntryRepository { return &EntryRepository{store: s} }

// Ledger returns a ledger repository backed by s.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

// Outbox returns an outbox repository backed by s.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

// Ping always succeeds; it lets the store back readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// accountLock returns the lock channel for an account, creating it on first use.
func (s *Store) accountLock(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}

	return l
}

type stagedDelta struct {
	amount    decimal.Decimal
	count     int64
	updatedAt time.Time
}

// Tx is a staged unit of work against a Store.
type Tx struct {
	store        *Store
	held         map[string]bool
	order        []string
	transactions []*domain.Transaction
	entries      []*domain.Entry
	events       []*domain.OutboxEvent
	deltas       map[string]*stagedDelta
	done         bool
}

func (tx *Tx) lock(ctx context.Context, id string) error {
	if tx.held[id] {
		return nil
	}

	l := tx.store.accountLock(id)

	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	tx.held[id] = true
	tx.order = append(tx.order, id)

	return nil
}

func (tx *Tx) release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		<-tx.store.accountLock(tx.order[i])
	}

	tx.held = nil
	tx.order = nil
}

// Commit makes every staged write visible at once and releases account locks.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}

	if err := ctx.Err(); err != nil {
		tx.discard()
		return err
	}

	s := tx.store
	s.mu.Lock()

	for _, t := range tx.transactions {
		s.transactions[t.ID] = t
	}

	for _, e := range tx.entries {
		s.entries[e.TransactionID] = append(s.entries[e.TransactionID], e)
	}

	for id, d := range tx.deltas {
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(d.amount)
		acc.Version += d.count
		acc.UpdatedAt = d.updatedAt
	}

	s.outbox = append(s.outbox, tx.events...)

	s.mu.Unlock()

	tx.done = true
	tx.release()

	return nil
}

// Rollback discards staged writes and releases account locks. It is a no-op
// after Commit.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}

	tx.discard()

	return nil
}

func (tx *Tx) discard() {
	tx.transactions = nil
	tx.entries = nil
	tx.events = nil
	tx.deltas = nil
	tx.done = true
	tx.release()
}

func (s *Store) asTx(t usecase.Transaction) (*Tx, error) {
	tx, ok := t.(*Tx)
	if !ok || tx.store != s {
		return nil, ErrForeignTx
	}

	if tx.done {
		return nil, ErrTxDone
	}

	return tx, nil
}

// ownedAccountIDs returns the sorted subset of ids that exist and belong to ownerID.
func (s *Store) ownedAccountIDs(ownerID string, ids []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if acc, ok := s.accounts[id]; ok && acc.OwnerID == ownerID {
			owned = append(owned, id)
		}
	}

	sort.Strings(owned)

	return owned
}
