package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes shared by every bounded context.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUpload              = "UPLOAD_ERROR"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNotFound).
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or inconsistent input.
// Any offending field names are listed in the message and kept in Fields.
func NewValidationError(message string, fields ...string) *DomainError {
	if len(fields) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(fields, ", "))
	}
	return &DomainError{Code: CodeValidation, Message: message, Fields: fields}
}

// NewNotFoundError reports a missing booking, installment or document
func NewNotFoundError(resource string, key any) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", resource, key)}
}

// NewUploadError reports a rejected file
func NewUploadError(message string) *DomainError {
	return &DomainError{Code: CodeUpload, Message: message}
}

// NewUpstreamError wraps a failure of a collaborator (database, object storage, cache)
func NewUpstreamError(operation string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeUpstream,
		Message: fmt.Sprintf("%s failed", operation),
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrUpload              = NewDomainError(CodeUpload, "Upload rejected")
	ErrUpstream            = NewDomainError(CodeUpstream, "Upstream service failed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// ErrorCode extracts the domain error code, or "" for foreign errors
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
