package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 1024
	DefaultPageSize      = 50
	MaxPageSize          = 1000
	MaxPageOffset        = math.MaxInt32
)

// Money is stored as NUMERIC(15,2): two decimal places and at most thirteen
// integer digits.
const (
	AmountScale     = 2
	AmountPrecision = 15
)

// MaxAmount is the largest value a single entry or account balance may hold.
var MaxAmount = decimal.New(1, AmountPrecision-AmountScale).Sub(decimal.New(1, -AmountScale))

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates an ISO 4217 currency code.
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if currency == "" || money.GetCurrency(currency) == nil {
		return fmt.Errorf("%w: %q is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateDraft runs the structural and arithmetic checks on a transaction
// draft. It stops at the first failing rule:
//
//  1. date and non-empty description present
//  2. at least two entries
//  3. every entry names an account, has a known kind and a positive amount
//     of at most two decimal places and no more than MaxAmount
//  4. debits equal credits exactly
//
// Account existence and ownership need a registry read and are checked by the
// processor under account locks.
func ValidateDraft(d Draft) error {
	if d.Date.IsZero() {
		return ErrDateRequired
	}

	if strings.TrimSpace(d.Description) == "" {
		return ErrDescriptionRequired
	}

	if len(d.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	if len(d.Entries) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewEntries, len(d.Entries))
	}

	for i, e := range d.Entries {
		if strings.TrimSpace(e.AccountID) == "" {
			return fmt.Errorf("%w: entry %d", ErrEntryAccountMissing, i)
		}

		if !e.Kind.IsValid() {
			return fmt.Errorf("%w: entry %d has kind %q", ErrInvalidEntryKind, i, e.Kind)
		}

		if err := ValidateAmount(e.Amount); err != nil {
			return fmt.Errorf("%w (entry %d)", err, i)
		}
	}

	debits, credits := d.Totals()
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits=%s credits=%s", ErrUnbalanced, debits, credits)
	}

	return nil
}

// ValidateAmount checks that a is a positive money amount within the stored
// scale and range. The exponent is bounded before any arithmetic: rounding or
// comparing a value like 1e-50000000 rescales it to fifty million digits.
func ValidateAmount(a decimal.Decimal) error {
	exp := a.Exponent()
	if exp < -(AmountPrecision+AmountScale) || exp > AmountPrecision {
		return fmt.Errorf("%w: exponent %d", ErrAmountOutOfRange, exp)
	}

	if !a.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, a)
	}

	if !a.Equal(a.Round(AmountScale)) {
		return fmt.Errorf("%w: got %s", ErrAmountPrecision, a)
	}

	if a.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: got %s", ErrAmountOutOfRange, a)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters. Offsets are
// capped to what the int4 query parameter can carry.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	if offset > MaxPageOffset {
		offset = MaxPageOffset
	}

	return limit, offset
}
