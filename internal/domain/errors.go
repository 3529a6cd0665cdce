package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code and message so sentinel values
// survive wrapping with a cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeLimitReached     = "LIMIT_REACHED"
	ErrCodeEmptyContent     = "EMPTY_CONTENT"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
)

// Pipeline error codes
const (
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeRetrievalUnavailable = "RETRIEVAL_UNAVAILABLE"
	ErrCodeIndexingFailed       = "INDEXING_FAILED"
	ErrCodeSynthesisUnavailable = "SYNTHESIS_UNAVAILABLE"
	ErrCodeTimeout              = "TIMEOUT"
)

// Validation errors
var (
	ErrInvalidItemType       = NewDomainError(ErrCodeValidation, "invalid item type")
	ErrInvalidIndexStatus    = NewDomainError(ErrCodeValidation, "invalid index status")
	ErrInvalidIndexJobStatus = NewDomainError(ErrCodeValidation, "invalid index job status")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyText             = NewDomainError(ErrCodeValidation, "text is required")
	ErrEmptyQuestion         = NewDomainError(ErrCodeValidation, "question is required")
	ErrNothingToUpdate       = NewDomainError(ErrCodeValidation, "nothing to update")
)

// Not found errors
var (
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "user not found")
	ErrCollectionNotFound = NewDomainError(ErrCodeNotFound, "collection not found")
	ErrItemNotFound       = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrAPIKeyNotFound     = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrIndexJobNotFound   = NewDomainError(ErrCodeNotFound, "index job not found")
)

// Already exists errors
var (
	ErrUserAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "user already exists")
	ErrAPIKeyAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked      = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey      = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrNotCollectionOwner = NewDomainError(ErrCodeForbidden, "only the collection owner can do this")
)

// Quota and extraction errors
var (
	ErrLimitReached         = NewDomainError(ErrCodeLimitReached, "limit reached")
	ErrEmptyContent         = NewDomainError(ErrCodeEmptyContent, "empty-content")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrStorageNotConfigured = NewDomainError(ErrCodeInvalidOperation, "object storage is not configured")
)

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the failed operation as is.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeRetrievalUnavailable, ErrCodeIndexingFailed, ErrCodeTimeout:
		return true
	}
	return false
}
