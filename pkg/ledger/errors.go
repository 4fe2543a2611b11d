package ledger

import (
	"errors"
	"strings"
)

// Domain error taxonomy. Handlers map these onto HTTP statuses; raw store
// errors never cross the package boundary except wrapped in ErrTransient.
var (
	// ErrNotFound covers both a missing resource and one owned by somebody
	// else, so callers cannot enumerate other users' accounts.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is the write-path ownership mismatch on direct object
	// access. Normal query paths are pre-filtered by owner and return
	// ErrNotFound first; this is the defense-in-depth check.
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidAmount          = errors.New("transaction_amount must be positive")
	ErrInvalidBankCode        = errors.New("unknown bank_code")
	ErrInvalidAccountType     = errors.New("unknown account_type")
	ErrInvalidTransactionType = errors.New("unknown transaction_type")
	ErrInvalidMethod          = errors.New("unknown transaction_method")
	ErrDuplicateAccountNumber = errors.New("account_number already registered to an active account")
	ErrInsufficientFunds      = errors.New("insufficient balance for withdrawal")
	ErrImmutableTransaction   = errors.New("transaction amount, type and snapshot are immutable")
	ErrTransient              = errors.New("store temporarily unavailable, retry")
)

// isUniqueViolation detects a unique-constraint failure from the driver so a
// race that slips past the application-level duplicate check is re-signaled
// as the domain error instead of leaking the store error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "SQLSTATE 23505")
}
