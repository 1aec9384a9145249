package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every operational failure wraps exactly one of these.
var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidAccount            = errors.New("invalid account")
	ErrInvalidCardType           = errors.New("invalid card type")
	ErrInvalidTransition         = errors.New("invalid state transition")
	ErrConflictingReconciliation = errors.New("conflicting reconciliation")
	ErrValidation                = errors.New("validation error")
	ErrUnauthenticated           = errors.New("unauthenticated")
)

var (
	// Lookup errors
	ErrAccountNotFound        = fmt.Errorf("account %w", ErrNotFound)
	ErrMovementNotFound       = fmt.Errorf("movement %w", ErrNotFound)
	ErrTransferNotFound       = fmt.Errorf("transfer %w", ErrNotFound)
	ErrCardNotFound           = fmt.Errorf("card %w", ErrNotFound)
	ErrReconciliationNotFound = fmt.Errorf("rendicion %w", ErrNotFound)

	// Account errors
	ErrSameAccount     = fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidAccount)
	ErrAccountInactive = fmt.Errorf("%w: account is inactive", ErrInvalidAccount)
	ErrAccountMissing  = fmt.Errorf("%w: %w", ErrInvalidAccount, ErrAccountNotFound)

	// Card errors
	ErrCardNotTopUpCapable = fmt.Errorf("%w: only PRECARGABLE cards accept top-ups", ErrInvalidCardType)

	// Reconciliation errors
	ErrOpenReconciliationExists = fmt.Errorf("%w: card already has an open or pending rendicion", ErrConflictingReconciliation)

	// Actor errors
	ErrMissingActor = fmt.Errorf("%w: no authenticated user in context", ErrUnauthenticated)
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}

	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TransitionError reports a state machine violation with the current and
// attempted state.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ErrorKind classifies errors for the boundary layer.
type ErrorKind string

const (
	KindNotFound                  ErrorKind = "NotFound"
	KindInvalidAccount            ErrorKind = "InvalidAccount"
	KindInvalidCardType           ErrorKind = "InvalidCardType"
	KindInvalidTransition         ErrorKind = "InvalidTransition"
	KindConflictingReconciliation ErrorKind = "ConflictingReconciliation"
	KindValidation                ErrorKind = "ValidationError"
	KindUnauthenticated           ErrorKind = "Unauthenticated"
	KindInternal                  ErrorKind = "Internal"
)

// KindOf returns the kind of err. Unknown errors are Internal. InvalidAccount
// wins over NotFound so that a missing transfer party keeps its kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAccount):
		return KindInvalidAccount
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCardType):
		return KindInvalidCardType
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrConflictingReconciliation):
		return KindConflictingReconciliation
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}

// CommittedError wraps a failure that happened after a unit of work was
// already durable, such as the balance recompute that follows a write.
// Repeating the request would repeat the write.
type CommittedError struct {
	Err error
}

func (e *CommittedError) Error() string {
	return "change recorded, follow-up failed: " + e.Err.Error()
}

func (e *CommittedError) Unwrap() error { return e.Err }

// IsCommitted reports whether err happened after its change was recorded.
func IsCommitted(err error) bool {
	var cErr *CommittedError
	return errors.As(err, &cErr)
}
