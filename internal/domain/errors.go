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

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, domain.ErrRetrieval) matches any retrieval failure.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
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
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeInvalidQuery      = "INVALID_QUERY"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeRetrieval         = "RETRIEVAL_ERROR"
	ErrCodeGeneration        = "GENERATION_ERROR"
	ErrCodeIndexFormat       = "INDEX_FORMAT_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Kind sentinels. They carry no message and match every error of their code.
var (
	ErrConfiguration     = NewDomainError(ErrCodeConfiguration, "")
	ErrInvalidQuery      = NewDomainError(ErrCodeInvalidQuery, "")
	ErrInvalidArgument   = NewDomainError(ErrCodeInvalidArgument, "")
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "")
	ErrRetrieval         = NewDomainError(ErrCodeRetrieval, "")
	ErrGeneration        = NewDomainError(ErrCodeGeneration, "")
	ErrIndexFormat       = NewDomainError(ErrCodeIndexFormat, "")
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "")
	ErrInternal          = NewDomainError(ErrCodeInternalError, "")
)

// Validation errors
var (
	ErrEmptyQuery           = NewDomainError(ErrCodeInvalidQuery, "query text is empty")
	ErrInvalidTopK          = NewDomainError(ErrCodeInvalidArgument, "top_k must be positive")
	ErrMissingRequiredField = NewDomainError(ErrCodeInvalidArgument, "missing required field")
	ErrNoRelevantContext    = NewDomainError(ErrCodeRetrieval, "no relevant documents found")
	ErrEmptyCompletion      = NewDomainError(ErrCodeGeneration, "provider returned an empty response")
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
)

// ConfigurationError reports an invalid setting.
func ConfigurationError(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeConfiguration, fmt.Sprintf(format, args...))
}

// DimensionMismatchError reports a vector whose length disagrees with the index.
func DimensionMismatchError(expected, got int) *DomainError {
	return NewDomainError(ErrCodeDimensionMismatch,
		fmt.Sprintf("expected %d dimensions, got %d", expected, got))
}

func RetrievalError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRetrieval, "retrieval failed", err)
}

func GenerationError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGeneration, "generation failed", err)
}

func IndexFormatError(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeIndexFormat, fmt.Sprintf(format, args...))
}

// ErrorCode returns the code of the first DomainError in err's chain, or
// ErrCodeInternalError when there is none.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}
