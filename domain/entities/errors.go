package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind identifies a ledger failure so adapters can branch on it
// without parsing message text.
type ErrorKind string

const (
	KindUnauthenticated     ErrorKind = "unauthenticated"
	KindCheckpointNotFound  ErrorKind = "checkpoint_not_found"
	KindCheckpointInactive  ErrorKind = "checkpoint_inactive"
	KindOutOfRange          ErrorKind = "out_of_range"
	KindAlreadyRedeemed     ErrorKind = "already_redeemed"
	KindInvalidCoordinate   ErrorKind = "invalid_coordinate"
	KindUserNotFound        ErrorKind = "user_not_found"
	KindRewardNotFound      ErrorKind = "reward_not_found"
	KindRewardUnavailable   ErrorKind = "reward_unavailable"
	KindInsufficientPoints  ErrorKind = "insufficient_points"
	KindTransactionConflict ErrorKind = "transaction_conflict"
	KindTimeout             ErrorKind = "timeout"
	KindStoreUnavailable    ErrorKind = "store_unavailable"
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	return string(k)
}

// Retryable reports whether the transaction runner may retry an operation
// that failed with this kind.
func (k ErrorKind) Retryable() bool {
	return k == KindTransactionConflict
}

// LedgerError is the single error type returned by the ledger core.
// Details carries optional diagnostic context such as the computed distance.
type LedgerError struct {
	Kind    ErrorKind
	Details map[string]any
	Err     error
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is matches any LedgerError of the same kind, so the package sentinels work
// with errors.Is regardless of details.
func (e *LedgerError) Is(target error) bool {
	var t *LedgerError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrUnauthenticated     = &LedgerError{Kind: KindUnauthenticated}
	ErrCheckpointNotFound  = &LedgerError{Kind: KindCheckpointNotFound}
	ErrCheckpointInactive  = &LedgerError{Kind: KindCheckpointInactive}
	ErrOutOfRange          = &LedgerError{Kind: KindOutOfRange}
	ErrAlreadyRedeemed     = &LedgerError{Kind: KindAlreadyRedeemed}
	ErrInvalidCoordinate   = &LedgerError{Kind: KindInvalidCoordinate}
	ErrUserNotFound        = &LedgerError{Kind: KindUserNotFound}
	ErrRewardNotFound      = &LedgerError{Kind: KindRewardNotFound}
	ErrRewardUnavailable   = &LedgerError{Kind: KindRewardUnavailable}
	ErrInsufficientPoints  = &LedgerError{Kind: KindInsufficientPoints}
	ErrTransactionConflict = &LedgerError{Kind: KindTransactionConflict}
	ErrTimeout             = &LedgerError{Kind: KindTimeout}
	ErrStoreUnavailable    = &LedgerError{Kind: KindStoreUnavailable}
)

// NewLedgerError creates a ledger error with optional details
func NewLedgerError(kind ErrorKind, details map[string]any) *LedgerError {
	return &LedgerError{Kind: kind, Details: details}
}

// WrapLedgerError creates a ledger error that keeps the underlying cause
func WrapLedgerError(kind ErrorKind, err error, details map[string]any) *LedgerError {
	return &LedgerError{Kind: kind, Details: details, Err: err}
}

// KindOf extracts the ledger error kind from err. It returns an empty kind
// for nil and for errors that did not originate in the ledger.
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// DetailsOf returns the diagnostic details attached to err, if any
func DetailsOf(err error) map[string]any {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Details
	}
	return nil
}

// IsLedgerError reports whether err carries a ledger error kind
func IsLedgerError(err error) bool {
	return KindOf(err) != ""
}
