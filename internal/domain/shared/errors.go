package shared

import "fmt"

// Error codes shared by every bounded context.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeDuplicateAssignment = "DUPLICATE_ASSIGNMENT"
	CodeInvariantViolation  = "INVARIANT_VIOLATION"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a malformed or out-of-range field
func NewValidationError(field, message string) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf("%s: %s", field, message))
}

// NewNotFoundError reports a missing entity of the given kind
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

// NewPermissionDeniedError reports a failed access check
func NewPermissionDeniedError(message string) *DomainError {
	return NewDomainError(CodePermissionDenied, message)
}

// NewInvariantViolationError reports an attempt to break an aggregate invariant
func NewInvariantViolationError(message string) *DomainError {
	return NewDomainError(CodeInvariantViolation, message)
}

// NewAlreadyExistsError reports a unique key collision
func NewAlreadyExistsError(entity, key string) *DomainError {
	return NewDomainError(CodeAlreadyExists, fmt.Sprintf("%s %q already exists", entity, key))
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrPermissionDenied    = NewDomainError(CodePermissionDenied, "Permission denied")
	ErrDuplicateAssignment = NewDomainError(CodeDuplicateAssignment, "Assignment already exists")
	ErrInvariantViolation  = NewDomainError(CodeInvariantViolation, "Operation violates an invariant")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authenticated")
)
