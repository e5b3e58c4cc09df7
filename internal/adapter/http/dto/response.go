package dto

import (
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Currency    string    `json:"currency"`
	Balance     string    `json:"balance"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Type:        string(a.Type),
		Currency:    a.Currency,
		Balance:     a.Balance.String(),
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Amount    string    `json:"amount"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:        e.ID,
		AccountID: e.AccountID,
		Amount:    e.Amount.String(),
		Kind:      string(e.Kind),
		CreatedAt: e.CreatedAt,
	}
}

// TransactionResponse represents a committed transaction with its entries.
type TransactionResponse struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Entries     []*EntryResponse `json:"entries"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	entries := make([]*EntryResponse, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = EntryFromDomain(e)
	}

	return &TransactionResponse{
		ID:          t.ID,
		Date:        t.Date.Format(DateLayout),
		Description: t.Description,
		Entries:     entries,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// SummaryResponse holds the dashboard figures.
type SummaryResponse struct {
	TotalAssets      string `json:"total_assets"`
	TotalLiabilities string `json:"total_liabilities"`
	NetWorth         string `json:"net_worth"`
	MonthlyIncome    string `json:"monthly_income"`
	MonthlyExpenses  string `json:"monthly_expenses"`
	MonthlySavings   string `json:"monthly_savings"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		TotalAssets:      s.TotalAssets.String(),
		TotalLiabilities: s.TotalLiabilities.String(),
		NetWorth:         s.NetWorth.String(),
		MonthlyIncome:    s.MonthlyIncome.String(),
		MonthlyExpenses:  s.MonthlyExpenses.String(),
		MonthlySavings:   s.MonthlySavings.String(),
	}
}

// AccountReconciliation is one account line of a consistency report.
type AccountReconciliation struct {
	AccountID         string `json:"account_id"`
	Name              string `json:"name"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
	Reconciled        bool   `json:"reconciled"`
}

// ConsistencyResponse is the result of a ledger consistency check.
type ConsistencyResponse struct {
	Status               string                   `json:"status"`
	Consistent           bool                     `json:"consistent"`
	TotalDebits          string                   `json:"total_debits"`
	TotalCredits         string                   `json:"total_credits"`
	Balanced             bool                     `json:"balanced"`
	TotalAccounts        int                      `json:"total_accounts"`
	UnreconciledAccounts int                      `json:"unreconciled_accounts"`
	Accounts             []*AccountReconciliation `json:"accounts"`
	CheckedAt            time.Time                `json:"checked_at"`
}

// ConsistencyFromReport converts a reconciliation report to response.
func ConsistencyFromReport(r *usecase.ReconciliationReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	accounts := make([]*AccountReconciliation, len(r.Results))
	for i, res := range r.Results {
		accounts[i] = &AccountReconciliation{
			AccountID:         res.AccountID,
			Name:              res.Name,
			RecordedBalance:   res.RecordedBalance.String(),
			CalculatedBalance: res.CalculatedBalance.String(),
			Difference:        res.Difference.String(),
			Reconciled:        res.IsReconciled,
		}
	}

	return &ConsistencyResponse{
		Status:               status,
		Consistent:           r.Consistent,
		TotalDebits:          r.TotalDebits.String(),
		TotalCredits:         r.TotalCredits.String(),
		Balanced:             r.Balanced,
		TotalAccounts:        r.TotalAccounts,
		UnreconciledAccounts: r.UnreconciledAccounts,
		Accounts:             accounts,
		CheckedAt:            r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
