package booking

import "fmt"

// Error codes surfaced to callers. Handlers map them to HTTP statuses.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidState      = "INVALID_STATE"
	CodeConflict          = "CONFLICT"
	CodeTransactionFailed = "TRANSACTION_FAILED"
)

// Error is a booking-flow error with a machine-readable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewUnauthorizedError(msg string) error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NewInvalidStateError(msg string) error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

func NewConflictError(msg string) error {
	return &Error{Code: CodeConflict, Message: msg}
}

// NewTransactionError wraps a failure that happened after money movement was
// attempted or the authorization reference was resolved.
func NewTransactionError(cause error) error {
	return &Error{Code: CodeTransactionFailed, Message: fmt.Sprintf("Transaction failed: %v", cause)}
}
