package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the side of the ledger an entry posts to.
type EntryKind string

const (
	EntryKindDebit  EntryKind = "debit"
	EntryKindCredit EntryKind = "credit"
)

// IsValid reports whether k is debit or credit.
func (k EntryKind) IsValid() bool {
	return k == EntryKindDebit || k == EntryKindCredit
}

// Signed returns +amount for a debit and -amount for a credit. The sign does
// not depend on the account classification.
func (k EntryKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == EntryKindCredit {
		return amount.Neg()
	}
	return amount
}

// Entry represents a single line of a transaction (debit or credit).
type Entry struct {
	CreatedAt     time.Time
	ID            string
	TransactionID string
	AccountID     string
	Amount        decimal.Decimal
	Kind          EntryKind
}

// SignedAmount is the delta this entry applies to its account balance.
func (e *Entry) SignedAmount() decimal.Decimal {
	return e.Kind.Signed(e.Amount)
}
