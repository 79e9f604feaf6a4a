package shared

// DomainError carries a machine-readable code alongside the human-readable
// message so transport layers can map it to a status without string matching.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrConflict      = NewDomainError("CONFLICT", "Operation conflicts with the current resource state")
	ErrLastAdmin     = NewDomainError("LAST_ADMIN", "A group must keep at least one admin")
	ErrTransient     = NewDomainError("TRANSIENT", "Store temporarily unavailable, retry later")
)
