package dto

import (
	"errors"
	"net/http"

	"github.com/estatebook/backend/internal/domain/shared"
)

// API error codes carried in ErrorInfo.Code
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired        = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "ERR_TOKEN_INVALID"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeUpload              = "ERR_UPLOAD"
	ErrCodePayloadTooLarge     = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeUpstream            = "ERR_UPSTREAM"
)

// statusByCode is the HTTP status of every API error code. Business rule
// violations are 422; failures of the database or object storage are 502.
var statusByCode = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeUpload:              http.StatusBadRequest,
	ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUpstream:            http.StatusBadGateway,
}

// apiCodeByDomainCode translates the domain error taxonomy
var apiCodeByDomainCode = map[string]string{
	shared.CodeValidation:          ErrCodeValidation,
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeUpload:              ErrCodeUpload,
	shared.CodeUpstream:            ErrCodeUpstream,
	shared.CodeAlreadyExists:       ErrCodeAlreadyExists,
	shared.CodeInvalidState:        ErrCodeInvalidState,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeUnauthorized:        ErrCodeUnauthorized,
	shared.CodeForbidden:           ErrCodeForbidden,
}

// StatusFor returns the HTTP status of an API error code, 500 when unknown
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// APICode translates a domain error code. Anything else passes through.
func APICode(domainCode string) string {
	if code, ok := apiCodeByDomainCode[domainCode]; ok {
		return code
	}
	return domainCode
}

// FromError resolves the API error code, HTTP status and client message for err.
// An upload rejected for its size maps to 413; foreign errors map to a generic 500.
func FromError(err error) (code string, status int, info *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return ErrCodeInternal, http.StatusInternalServerError,
			&ErrorInfo{Code: ErrCodeInternal, Message: "An unexpected error occurred"}
	}

	code = APICode(de.Code)
	if de.Code == shared.CodeUpload && len(de.Fields) > 0 && de.Fields[0] == "size" {
		code = ErrCodePayloadTooLarge
	}
	// The message never includes the wrapped cause; upstream causes stay in the logs
	return code, StatusFor(code), &ErrorInfo{Code: code, Message: de.Message, Fields: de.Fields}
}
