package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a committed, balanced set of entries. It is never mutated
// after commit.
type Transaction struct {
	ID          string
	OwnerID     string
	Date        time.Time
	Description string
	Entries     []*Entry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Totals sums the debit and credit amounts of the transaction.
func (t *Transaction) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		switch e.Kind {
		case EntryKindDebit:
			debits = debits.Add(e.Amount)
		case EntryKindCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// DraftEntry is one proposed line of a transaction draft.
type DraftEntry struct {
	AccountID string
	Amount    decimal.Decimal
	Kind      EntryKind
}

// Draft is a proposed transaction as submitted by a caller.
type Draft struct {
	Date        time.Time
	Description string
	Entries     []DraftEntry
}

// AccountIDs returns the distinct account ids referenced by the draft, sorted.
// Locks are always taken in this order.
func (d Draft) AccountIDs() []string {
	seen := make(map[string]bool, len(d.Entries))

	ids := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}

	sort.Strings(ids)

	return ids
}

// Totals sums the debit and credit amounts of the draft.
func (d Draft) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range d.Entries {
		switch e.Kind {
		case EntryKindDebit:
			debits = debits.Add(e.Amount)
		case EntryKindCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// TransactionFilter narrows ListTransactions results.
type TransactionFilter struct {
	Search string
	Kind   EntryKind
	Limit  int
	Offset int
}

// Matches reports whether t passes the search and kind criteria. Pagination
// is not considered.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}

	if f.Kind == "" {
		return true
	}

	for _, e := range t.Entries {
		if e.Kind == f.Kind {
			return true
		}
	}

	return false
}
