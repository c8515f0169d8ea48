package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

// BookingAuditHandler writes one structured log line per booking event.
type BookingAuditHandler struct {
	logger *zap.Logger
}

// NewBookingAuditHandler logs under telemetry.AuditLoggerName, which is always exported
func NewBookingAuditHandler(l *zap.Logger) *BookingAuditHandler {
	return &BookingAuditHandler{logger: l.Named(telemetry.AuditLoggerName)}
}

// EventTypes implements shared.EventHandler.
func (h *BookingAuditHandler) EventTypes() []string {
	return []string{
		booking.EventTypeBookingCreated,
		booking.EventTypeBookingUpdated,
		booking.EventTypeBookingCancelled,
		booking.EventTypeInstallmentStatusChanged,
		booking.EventTypeInstallmentProofAttached,
	}
}

// Handle implements shared.EventHandler. Tenant and request ids come from ctx.
func (h *BookingAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("booking_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *booking.BookingCreatedEvent:
		fields = append(fields,
			zap.String("booking_number", e.BookingNumber),
			zap.String("booking_type", string(e.Type)),
			zap.String("total_property_value", e.TotalPropertyValue.String()),
			zap.Int("installment_count", e.InstallmentCount),
		)
	case *booking.BookingUpdatedEvent:
		fields = append(fields,
			zap.String("booking_number", e.BookingNumber),
			zap.String("status", string(e.Status)),
			zap.Bool("schedule_regenerated", e.ScheduleRegenerated),
		)
	case *booking.BookingCancelledEvent:
		fields = append(fields,
			zap.String("booking_number", e.BookingNumber),
			zap.String("reason", e.Reason),
		)
	case *booking.InstallmentStatusChangedEvent:
		fields = append(fields,
			zap.String("booking_number", e.BookingNumber),
			zap.Int("installment_number", e.InstallmentNumber),
			zap.String("old_status", string(e.OldStatus)),
			zap.String("new_status", string(e.NewStatus)),
			zap.String("late_fees", e.LateFees.String()),
		)
	case *booking.InstallmentProofAttachedEvent:
		fields = append(fields,
			zap.String("booking_number", e.BookingNumber),
			zap.Int("installment_number", e.InstallmentNumber),
			zap.String("document_id", e.DocumentID.String()),
			zap.Bool("replaced", e.Replaced),
		)
	}

	logger.Enrich(ctx, h.logger).Info("Booking event", fields...)
	return nil
}
