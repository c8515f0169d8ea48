package dto

import "github.com/estatebook/backend/internal/domain/shared"

// Response is the envelope every booking and report endpoint answers with.
// Exactly one of Data or Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the machine readable part of a failed response. Fields names
// the offending request attributes when the failure was a validation or upload error.
type ErrorInfo struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// Meta describes one page of a booking listing
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPagedResponse moves the paging fields of p into Meta and leaves the
// items as Data
func NewPagedResponse[T any](p shared.Paginated[T]) Response {
	return Response{
		Success: true,
		Data:    p.Items,
		Meta: &Meta{
			Total:      p.Total,
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalPages: p.TotalPages,
		},
	}
}

// NewErrorResponse is used by middleware that fails before a request id exists
func NewErrorResponse(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithRequestID stamps requestID onto info
func NewErrorResponseWithRequestID(info *ErrorInfo, requestID string) Response {
	info.RequestID = requestID
	return Response{Error: info}
}
