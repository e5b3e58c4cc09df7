package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Submit(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// Submit commits a transaction draft.
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	tx, err := h.txUC.Submit(r.Context(), ownerID(r), draft)
	if err != nil {
		writeDomainError(w, "transaction rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction with its entries.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.txUC.GetTransaction(r.Context(), ownerID(r), id)
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// List lists transactions newest first with ?q=, ?kind=, ?limit= and ?offset=.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", domain.DefaultPageSize)
	if err != nil {
		writeDomainError(w, "invalid pagination", err)
		return
	}

	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeDomainError(w, "invalid pagination", err)
		return
	}

	query := r.URL.Query()
	filter := domain.TransactionFilter{
		Search: query.Get("q"),
		Limit:  limit,
		Offset: offset,
	}

	if raw := query.Get("kind"); raw != "" {
		kind := domain.EntryKind(strings.ToLower(raw))
		if !kind.IsValid() {
			writeDomainError(w, "invalid kind filter", domain.ErrInvalidEntryKind)
			return
		}
		filter.Kind = kind
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	txs, err := h.txUC.ListTransactions(r.Context(), ownerID(r), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}
