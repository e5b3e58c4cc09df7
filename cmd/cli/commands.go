package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	"github.com/iho/fintrack/internal/infrastructure/auth"
)

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	var create dto.CreateAccountRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/api/v1/accounts", nil, &create, nil)
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "Account name")
	createCmd.Flags().StringVar(&create.Type, "type", "", "asset, liability, equity, revenue or expense")
	createCmd.Flags().StringVar(&create.Currency, "currency", "", "ISO 4217 code (server default when empty)")
	createCmd.Flags().StringVar(&create.Description, "description", "", "Free-form description")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("type")

	var accountType, search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "type", accountType)
			setIf(q, "q", search)
			return request(cmd, opts, http.MethodGet, "/api/v1/accounts", q, nil, nil)
		},
	}
	listCmd.Flags().StringVar(&accountType, "type", "", "Only accounts of this type")
	listCmd.Flags().StringVar(&search, "q", "", "Case-insensitive name search")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, nil, nil)
		},
	}

	var name, description, currency string
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change an account's name, description or currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateAccountRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("currency") {
				req.Currency = &currency
			}
			if req.Name == nil && req.Description == nil && req.Currency == nil {
				return errors.New("nothing to update: pass --name, --description or --currency")
			}
			return request(cmd, opts, http.MethodPatch, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &req, nil)
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "New name")
	updateCmd.Flags().StringVar(&description, "description", "", "New description")
	updateCmd.Flags().StringVar(&currency, "currency", "", "New currency code")

	cmd.AddCommand(createCmd, listCmd, getCmd, updateCmd)
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and inspect transactions",
	}

	var (
		date, description, idempotencyKey string
		entries                           []string
	)
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a balanced transaction",
		Example: `  fintrack-cli tx submit --description "Groceries" \
    --entry EXPENSE_ID:54.20:debit --entry BANK_ID:54.20:credit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateTransactionRequest{Date: date, Description: description}
			for _, raw := range entries {
				e, err := parseEntry(raw)
				if err != nil {
					return err
				}
				req.Entries = append(req.Entries, e)
			}

			var headers map[string]string
			if idempotencyKey != "" {
				headers = map[string]string{middleware.IdempotencyKeyHeader: idempotencyKey}
			}

			return request(cmd, opts, http.MethodPost, "/api/v1/transactions", nil, &req, headers)
		},
	}
	submitCmd.Flags().StringVar(&date, "date", time.Now().Format(dto.DateLayout), "Transaction date (YYYY-MM-DD or RFC 3339)")
	submitCmd.Flags().StringVar(&description, "description", "", "What the transaction is for")
	submitCmd.Flags().StringArrayVar(&entries, "entry", nil, "ACCOUNT_ID:AMOUNT:debit|credit (repeatable)")
	submitCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Key that makes retries safe")
	_ = submitCmd.MarkFlagRequired("description")

	var (
		search, kind  string
		limit, offset int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "q", search)
			setIf(q, "kind", kind)
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}
			return request(cmd, opts, http.MethodGet, "/api/v1/transactions", q, nil, nil)
		},
	}
	listCmd.Flags().StringVar(&search, "q", "", "Case-insensitive description search")
	listCmd.Flags().StringVar(&kind, "kind", "", "Only transactions with a debit or credit entry")
	listCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a transaction with its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, nil, nil)
		},
	}

	cmd.AddCommand(submitCmd, listCmd, getCmd)
	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show assets, liabilities, net worth and income figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/api/v1/summary", nil, nil, nil)
		},
	}
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := request(cmd, opts, http.MethodGet, "/api/v1/ledger/consistency", nil, nil, nil)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				return errors.New("consistency check FAILED")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		owner, secret string
		ttl           time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required: pass --secret or set JWT_SECRET")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(owner)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner-id", "", "Owner id to embed")
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "HMAC signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("owner-id")

	return cmd
}

// request performs a call and prints the JSON answer. Error bodies are
// printed too so the caller sees the server's explanation.
func request(cmd *cobra.Command, opts *options, method, path string, query url.Values, body any, headers map[string]string) error {
	raw, err := newClient(opts).do(cmd.Context(), method, path, query, body, headers)
	if len(raw) > 0 {
		if perr := printJSON(cmd.OutOrStdout(), raw); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// parseEntry reads ACCOUNT_ID:AMOUNT:KIND.
func parseEntry(raw string) (dto.EntryRequest, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return dto.EntryRequest{}, fmt.Errorf("entry %q: want ACCOUNT_ID:AMOUNT:debit|credit", raw)
	}

	return dto.EntryRequest{
		AccountID: parts[0],
		Amount:    parts[1],
		Kind:      strings.ToLower(parts[2]),
	}, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
