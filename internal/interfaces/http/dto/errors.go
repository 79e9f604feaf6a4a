package dto

import "net/http"

// API error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidInput  = "ERR_INVALID_INPUT"
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeLastAdmin     = "ERR_LAST_ADMIN"
	ErrCodeTransient     = "ERR_TRANSIENT"
	ErrCodeInternal      = "ERR_INTERNAL"
)

// domainToAPICode maps domain error codes onto API error codes
var domainToAPICode = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
	"CONFLICT":       ErrCodeConflict,
	"LAST_ADMIN":     ErrCodeLastAdmin,
	"TRANSIENT":      ErrCodeTransient,
}

// codeToStatus maps API error codes onto HTTP status codes
var codeToStatus = map[string]int{
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeLastAdmin:     http.StatusConflict,
	ErrCodeTransient:     http.StatusServiceUnavailable,
	ErrCodeInternal:      http.StatusInternalServerError,
}

// NormalizeErrorCode maps a domain error code to its API error code
func NormalizeErrorCode(domainCode string) string {
	if code, ok := domainToAPICode[domainCode]; ok {
		return code
	}
	return ErrCodeInternal
}

// GetHTTPStatus returns the HTTP status for an API error code
func GetHTTPStatus(code string) int {
	if status, ok := codeToStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
