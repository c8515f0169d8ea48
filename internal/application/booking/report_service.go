package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

// ReportService serves the reconciliation dashboards. Every report is
// recomputed from the repositories on each call.
type ReportService struct {
	bookings booking.BookingRepository
	payments booking.PaymentRecordRepository
	opts     options
}

// NewReportService creates a new ReportService
func NewReportService(bookings booking.BookingRepository, payments booking.PaymentRecordRepository, opts ...Option) *ReportService {
	return &ReportService{
		bookings: bookings,
		payments: payments,
		opts:     buildOptions(opts),
	}
}

// activeBookings loads every booking that still takes part in reporting
func (s *ReportService) activeBookings(ctx context.Context, tenantID uuid.UUID) ([]booking.Booking, error) {
	return s.bookings.FindAllForTenant(ctx, tenantID, booking.BookingFilter{
		Filter:     shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
		ActiveOnly: true,
	})
}

func (s *ReportService) asOf(asOf *time.Time) time.Time {
	if asOf != nil {
		return *asOf
	}
	return s.opts.now()
}

// PendingInstallments lists PENDING installments not yet due as of the date
// (today when asOf is nil), ordered by due date.
func (s *ReportService) PendingInstallments(ctx context.Context, actor shared.Actor, asOf *time.Time) ([]InstallmentViewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "PendingInstallments", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	bookings, err := s.activeBookings(ctx, actor.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toViews(booking.PendingInstallments(bookings, s.asOf(asOf))), nil
}

// OverdueInstallments lists unpaid installments past their due date with days overdue
func (s *ReportService) OverdueInstallments(ctx context.Context, actor shared.Actor, asOf *time.Time) ([]InstallmentViewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "OverdueInstallments", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	bookings, err := s.activeBookings(ctx, actor.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toViews(booking.OverdueInstallments(bookings, s.asOf(asOf))), nil
}

func toViews(views []booking.InstallmentView) []InstallmentViewResponse {
	out := make([]InstallmentViewResponse, len(views))
	for i, v := range views {
		out[i] = ToInstallmentViewResponse(v)
	}
	return out
}

func (s *ReportService) allPayments(ctx context.Context, tenantID uuid.UUID, bookingID *uuid.UUID) ([]booking.PaymentRecord, error) {
	return s.payments.FindAllForTenant(ctx, tenantID, booking.PaymentRecordFilter{
		Filter:    shared.Filter{OrderBy: "payment_date", OrderDir: "asc"},
		BookingID: bookingID,
	})
}

// UnreconciledPayments lists payment records not yet reconciled
func (s *ReportService) UnreconciledPayments(ctx context.Context, actor shared.Actor) ([]PaymentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "UnreconciledPayments", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	records, err := s.allPayments(ctx, actor.TenantID, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toPaymentResponses(booking.UnreconciledPayments(records)), nil
}

// PaymentHistory lists the payment records of one booking
func (s *ReportService) PaymentHistory(ctx context.Context, actor shared.Actor, bookingID uuid.UUID) ([]PaymentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "PaymentHistory",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, bookingID.String()))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	if _, err := s.bookings.FindByIDForTenant(ctx, actor.TenantID, bookingID); err != nil {
		return nil, err
	}
	records, err := s.allPayments(ctx, actor.TenantID, &bookingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toPaymentResponses(records), nil
}

func toPaymentResponses(records []booking.PaymentRecord) []PaymentRecordResponse {
	out := make([]PaymentRecordResponse, len(records))
	for i := range records {
		out[i] = ToPaymentRecordResponse(&records[i])
	}
	return out
}

// PaymentSummary counts payment records by status and sums COMPLETED amounts
func (s *ReportService) PaymentSummary(ctx context.Context, actor shared.Actor) (*PaymentSummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "PaymentSummary", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	records, err := s.allPayments(ctx, actor.TenantID, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := booking.Summarize(records)
	resp := &PaymentSummaryResponse{
		Total:           summary.Total,
		CountByStatus:   make(map[string]int, len(summary.CountByStatus)),
		CompletedAmount: summary.CompletedAmount,
		Currency:        string(s.opts.defaultCurrency),
		Unreconciled:    summary.Unreconciled,
	}
	for status, n := range summary.CountByStatus {
		resp.CountByStatus[string(status)] = n
	}
	if m, err := valueobject.NewMoney(summary.CompletedAmount, s.opts.defaultCurrency); err == nil {
		resp.CompletedAmountFormatted = m.Format()
	}
	return resp, nil
}

// Reconcile marks a payment record as matched against the bank statement
func (s *ReportService) Reconcile(ctx context.Context, actor shared.Actor, paymentID uuid.UUID) (*PaymentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "Reconcile", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	record, err := s.payments.FindByIDForTenant(ctx, actor.TenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := record.Reconcile(actor, s.opts.now()); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.Enrich(ctx, s.opts.logger).Info("Payment reconciled",
		zap.String("payment_id", record.ID.String()),
		zap.String("booking_id", record.BookingID.String()),
		zap.Int("installment_number", record.InstallmentNumber),
	)
	resp := ToPaymentRecordResponse(record)
	return &resp, nil
}
