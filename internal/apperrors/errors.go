package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrParse indicates that an uploaded statement yielded no usable transactions.
var ErrParse = errors.New("statement parse error")

// ErrPersistence indicates that a statement could not be stored as a whole.
var ErrPersistence = errors.New("persistence error")

// ErrMatchUpdate indicates that a single match could not be written during auto-match.
var ErrMatchUpdate = errors.New("match update error")

// ErrPrecondition indicates that a transaction is not in the state an operation requires.
var ErrPrecondition = errors.New("precondition failed")

// ErrConflict indicates that an equivalent operation is already running.
var ErrConflict = errors.New("operation already in progress")

// Error carries the identifiers a caller needs to retry or investigate a failure.
// Zero ids are omitted from the message.
type Error struct {
	Kind          error
	Op            string
	AccountID     int64
	BatchID       int64
	TransactionID int64
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	var ids []string
	if e.AccountID != 0 {
		ids = append(ids, fmt.Sprintf("account_id=%d", e.AccountID))
	}
	if e.BatchID != 0 {
		ids = append(ids, fmt.Sprintf("batch_id=%d", e.BatchID))
	}
	if e.TransactionID != 0 {
		ids = append(ids, fmt.Sprintf("transaction_id=%d", e.TransactionID))
	}
	if len(ids) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ids, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New builds an Error of the given kind.
func New(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf is shorthand for a validation failure with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
