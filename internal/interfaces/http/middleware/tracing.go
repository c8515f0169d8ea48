// Package middleware provides HTTP middleware for the brokerage API.
package middleware

import (
	"net/http"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig selects the service name reported on HTTP server spans
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing starts one server span per request, named after the matched route
// (for example "PUT /api/v1/bookings/:id/installments/status").
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector tags the request span with the request id and the
// authenticated actor. It must run after Tracing and the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(requestAttributes(c)...)
		}
		c.Next()
	}
}

func requestAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if id := c.GetString(logger.RequestIDKey); id != "" {
		attrs = append(attrs, attribute.String(telemetry.SpanAttrRequestID, id))
	}
	actor, ok := GetActor(c)
	if !ok {
		return attrs
	}
	attrs = append(attrs, attribute.String(telemetry.SpanAttrTenantID, actor.TenantID.String()))
	if actor.HasUser() {
		attrs = append(attrs, attribute.String(telemetry.SpanAttrUserID, actor.UserID.String()))
	}
	return attrs
}

// SpanErrorMarker records the outcome of failed requests on the span. Every
// 4xx and 5xx carries the domain error code the handler reported, and only
// 5xx responses set the span status to Error.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		span := trace.SpanFromContext(c.Request.Context())
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}

		if last := c.Errors.Last(); last != nil {
			if code := shared.ErrorCode(last.Err); code != "" {
				span.SetAttributes(attribute.String(telemetry.SpanAttrErrorCode, code))
			}
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
