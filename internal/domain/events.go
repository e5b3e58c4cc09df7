package domain

import "time"

// Event types
const (
	EventTypeTransactionCommitted = "transaction.committed"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionCommittedPayload builds the outbox payload for a committed transaction.
func NewTransactionCommittedPayload(t *Transaction) map[string]any {
	entries := make([]any, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, map[string]any{
			"account_id": e.AccountID,
			"amount":     e.Amount.String(),
			"kind":       string(e.Kind),
		})
	}

	return map[string]any{
		"transaction_id": t.ID,
		"owner_id":       t.OwnerID,
		"date":           t.Date.UTC().Format(time.RFC3339),
		"description":    t.Description,
		"entries":        entries,
		"committed_at":   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
