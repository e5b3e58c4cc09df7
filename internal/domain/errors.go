package domain

import "errors"

// Error classes. Every error the ledger core returns matches exactly one of
// these through errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPersistence     = errors.New("persistence failure")
)

var (
	// Account errors
	ErrAccountNotFound     = notFoundError("account not found")
	ErrInvalidAccountName  = validationError("invalid account name")
	ErrInvalidAccountType  = validationError("invalid account type")
	ErrInvalidCurrency     = validationError("invalid currency code")
	ErrMissingOwner        = authError("owner identity is required")
	ErrTransactionNotFound = notFoundError("transaction not found")
	ErrBalanceOutOfRange   = validationError("account balance would leave the supported range")

	// Draft errors, in the order the validator checks them
	ErrDateRequired        = validationError("transaction date is required")
	ErrDescriptionRequired = validationError("transaction description is required")
	ErrDescriptionTooLong  = validationError("transaction description is too long")
	ErrTooFewEntries       = validationError("transaction needs at least two entries")
	ErrEntryAccountMissing = validationError("entry account is required")
	ErrInvalidEntryKind    = validationError("entry kind must be debit or credit")
	ErrAmountOutOfRange    = validationError("entry amount is out of range")
	ErrInvalidAmount       = validationError("entry amount must be positive")
	ErrAmountPrecision     = validationError("entry amount has more than two decimal places")
	ErrUnbalanced          = validationError("debits do not equal credits")
)

type classError struct {
	class error
	msg   string
}

func (e classError) Error() string { return e.msg }
func (e classError) Unwrap() error { return e.class }

func validationError(msg string) error { return classError{class: ErrValidation, msg: msg} }
func notFoundError(msg string) error { return classError{class: ErrNotFound, msg: msg} }
func authError(msg string) error { return classError{class: ErrUnauthenticated, msg: msg} }

// PersistenceError wraps a storage failure that happened while a commit was
// in flight. The commit has been rolled back and may be resubmitted.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err unless it is nil or already a PersistenceError.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}

	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return "persistence failure during " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
