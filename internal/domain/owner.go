package domain

import "strings"

// RequireOwner checks that an owner identity was supplied. Every ledger
// operation is scoped by owner and calls this before touching storage.
func RequireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrMissingOwner
	}
	return nil
}
