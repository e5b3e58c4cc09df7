package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// DateLayout is the short date format accepted for transaction dates.
const DateLayout = "2006-01-02"

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Currency    string `json:"currency,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Currency:    r.Currency,
	}
}

// UpdateAccountRequest carries the fields of a PATCH. Absent fields keep
// their current value.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

// ToDomain converts to a domain update.
func (r *UpdateAccountRequest) ToDomain() domain.AccountUpdate {
	return domain.AccountUpdate{
		Name:        r.Name,
		Description: r.Description,
		Currency:    r.Currency,
	}
}

// EntryRequest is one line of a transaction request.
type EntryRequest struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Kind      string `json:"kind"`
}

// CreateTransactionRequest represents a transaction draft.
type CreateTransactionRequest struct {
	Date        string         `json:"date"`
	Description string         `json:"description"`
	Entries     []EntryRequest `json:"entries"`
}

// ToDraft parses the request into a domain draft. Only parsing happens here;
// the ledger rules are checked by the transaction use case. An amount that
// does not parse becomes zero, so it is reported as a non-positive amount in
// rule order rather than ahead of earlier failures such as a missing
// description.
func (r *CreateTransactionRequest) ToDraft() (domain.Draft, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.Draft{}, err
	}

	entries := make([]domain.DraftEntry, len(r.Entries))
	for i, e := range r.Entries {
		amount, err := decimal.NewFromString(strings.TrimSpace(e.Amount))
		if err != nil {
			amount = decimal.Zero
		}

		entries[i] = domain.DraftEntry{
			AccountID: strings.TrimSpace(e.AccountID),
			Amount:    amount,
			Kind:      domain.EntryKind(strings.ToLower(strings.TrimSpace(e.Kind))),
		}
	}

	return domain.Draft{
		Date:        date,
		Description: r.Description,
		Entries:     entries,
	}, nil
}

// ParseDate accepts either a calendar date or an RFC 3339 timestamp. An empty
// string yields the zero time so the draft validator reports the missing date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is neither YYYY-MM-DD nor RFC 3339", domain.ErrValidation, s)
	}

	return t, nil
}
