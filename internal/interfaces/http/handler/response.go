package handler

import "github.com/estatebook/backend/internal/interfaces/http/dto"

// The types below only shape the generated OpenAPI document. Handlers write
// dto.Response directly.

// APIResponse is the success envelope with a typed payload
// @Description Success envelope; data holds the endpoint payload
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ListResponse is the envelope of paged booking listings
// @Description One page of results with paging metadata
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is returned for every 4xx and 5xx
// @Description Failure envelope; error.fields lists rejected attributes
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// DocumentsData is the payload of a document upload or replacement: the booking's full document list
// @Description Documents attached to a booking after the upload
type DocumentsData[T any] struct {
	Documents []T `json:"documents"`
}
