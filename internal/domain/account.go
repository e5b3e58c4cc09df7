package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the reporting classification of an account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeAsset:     true,
	AccountTypeLiability: true,
	AccountTypeEquity:    true,
	AccountTypeRevenue:   true,
	AccountTypeExpense:   true,
}

// IsValid reports whether t is one of the five classifications.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// ParseAccountType converts user input into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidAccountType
	}
	return t, nil
}

// Account represents a ledger account owned by a single user.
type Account struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Type        AccountType
	Currency    string
	Balance     decimal.Decimal
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDelta returns the balance after adding a signed delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// Clone returns a copy that shares no mutable state with a.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// AccountFilter narrows ListAccounts results. Zero values match everything.
type AccountFilter struct {
	Type         AccountType
	NameContains string
}

// Matches reports whether the account passes the filter.
func (f AccountFilter) Matches(a *Account) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}

	if f.NameContains != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.NameContains)) {
		return false
	}

	return true
}

// AccountUpdate holds the mutable account fields. Nil fields are left untouched.
type AccountUpdate struct {
	Name        *string
	Description *string
	Currency    *string
}

// IsEmpty reports whether the update changes nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Currency == nil
}
