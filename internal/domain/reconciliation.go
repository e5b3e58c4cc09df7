package domain

import "github.com/shopspring/decimal"

// BalanceCheck pairs an account's stored balance with the balance recomputed
// from its committed entries.
type BalanceCheck struct {
	AccountID  string
	Name       string
	Recorded   decimal.Decimal
	Calculated decimal.Decimal
}

// Difference is recorded minus calculated.
func (c BalanceCheck) Difference() decimal.Decimal {
	return c.Recorded.Sub(c.Calculated)
}

// IsReconciled reports whether the stored balance matches the entries.
func (c BalanceCheck) IsReconciled() bool {
	return c.Recorded.Equal(c.Calculated)
}
