package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/estatebook/backend/internal/domain/shared"
)

// TracerName names the tracer of the application services
const TracerName = "estatebook/booking"

// Span attribute keys of the booking services
const (
	SpanAttrRequestID         = "request_id"
	SpanAttrTenantID          = "tenant_id"
	SpanAttrUserID            = "user_id"
	SpanAttrBookingID         = "booking_id"
	SpanAttrBookingNumber     = "booking_number"
	SpanAttrBookingType       = "booking_type"
	SpanAttrInstallmentNumber = "installment_number"
	SpanAttrInstallmentStatus = "installment_status"
	SpanAttrDocumentType      = "document_type"
	SpanAttrFileSize          = "file_size"
	SpanAttrStorageKey        = "storage_key"
	SpanAttrBatchSize         = "batch_size"
	SpanAttrExportFormat      = "export_format"
	SpanAttrErrorCode         = "error.code"
)

// SpanOption adds start attributes to a service span
type SpanOption func(*[]attribute.KeyValue)

func WithAttribute(key string, value any) SpanOption {
	return func(attrs *[]attribute.KeyValue) {
		*attrs = append(*attrs, toAttribute(key, value))
	}
}

// WithActor records the tenant and, when authenticated, the user
func WithActor(actor shared.Actor) SpanOption {
	return func(attrs *[]attribute.KeyValue) {
		*attrs = append(*attrs, attribute.String(SpanAttrTenantID, actor.TenantID.String()))
		if actor.HasUser() {
			*attrs = append(*attrs, attribute.String(SpanAttrUserID, actor.UserID.String()))
		}
	}
}

// StartServiceSpan starts an internal span named "{service}.{method}" on the
// global provider. The caller must End it.
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	for _, opt := range opts {
		opt(&attrs)
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// SetAttributes adds alternating key/value pairs. Non-string keys are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	span.SetAttributes(attrs...)
}

// RecordError attaches err to the span with its domain error code. Only
// server-side failures (upstream, concurrency, unknown) set the span status
// to Error; rejected input is part of normal operation.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	code := shared.ErrorCode(err)
	span.RecordError(err)
	if code != "" {
		span.SetAttributes(attribute.String(SpanAttrErrorCode, code))
	}
	if isServerFault(code) {
		span.SetStatus(codes.Error, err.Error())
	}
}

func isServerFault(code string) bool {
	switch code {
	case shared.CodeValidation, shared.CodeNotFound, shared.CodeUpload, shared.CodeAlreadyExists,
		shared.CodeInvalidState, shared.CodeUnauthorized, shared.CodeForbidden:
		return false
	}
	return true
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
