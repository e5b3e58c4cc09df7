package usecase

import "time"

const (
	// DefaultCommitTimeout bounds a commit once the storage transaction has
	// begun. Caller cancellation no longer applies past that point.
	DefaultCommitTimeout = 10 * time.Second

	// DefaultCurrency is assigned to accounts created without a currency.
	DefaultCurrency = "USD"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
