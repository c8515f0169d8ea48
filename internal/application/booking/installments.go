package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

// PartialBatchMessage is reported when a batch stopped after saving some updates
const PartialBatchMessage = "some changes may have been saved"

// UpdateInstallmentStatus records a status change (and optional late fee) on one
// installment, then appends a payment-history record. A failed history write is
// logged and does not fail the request.
func (s *BookingService) UpdateInstallmentStatus(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateInstallmentStatusRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "UpdateInstallmentStatus",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentNumber, req.InstallmentNumber),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentStatus, req.Status),
	)
	defer span.End()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	inst, err := b.ChangeInstallmentStatus(req.InstallmentNumber, booking.InstallmentStatus(req.Status), req.LateFees, now)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)
	s.opts.metrics.InstallmentStatusChanged(ctx, string(inst.Status))
	s.appendPaymentRecord(ctx, actor, b, inst)

	resp := ToBookingResponse(b, now)
	return &resp, nil
}

// BatchUpdateInstallmentStatuses saves several status changes in order, one
// save per installment. Every update is checked before the first save; if a
// save then fails, updates already saved stay saved, the rest are skipped and
// the result is marked partial.
func (s *BookingService) BatchUpdateInstallmentStatuses(ctx context.Context, actor shared.Actor, id uuid.UUID, req BatchUpdateInstallmentsRequest) (*BatchUpdateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "BatchUpdateInstallmentStatuses",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(req.Updates)),
	)
	defer span.End()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(b, req.Updates); err != nil {
		return nil, err
	}

	result := &BatchUpdateResult{Applied: []int{}, Failed: []BatchFailure{}, Skipped: []int{}}
	for i, u := range req.Updates {
		now := s.opts.now()
		prevSchedule, prevUpdated := b.Schedule, b.UpdatedAt

		inst, err := b.ChangeInstallmentStatus(u.InstallmentNumber, booking.InstallmentStatus(u.Status), u.LateFees, now)
		if err == nil {
			err = s.bookings.Save(ctx, b)
		}
		if err != nil {
			b.Schedule, b.UpdatedAt = prevSchedule, prevUpdated
			b.ClearDomainEvents()
			telemetry.RecordError(span, err)

			if len(result.Applied) == 0 {
				return nil, err
			}
			result.Failed = append(result.Failed, BatchFailure{
				InstallmentNumber: u.InstallmentNumber,
				Code:              shared.ErrorCode(err),
				Error:             err.Error(),
			})
			for _, rest := range req.Updates[i+1:] {
				result.Skipped = append(result.Skipped, rest.InstallmentNumber)
			}
			result.Partial = true
			result.Message = PartialBatchMessage
			s.log(ctx).Warn("Installment batch stopped after partial save",
				zap.String("booking_id", b.ID.String()),
				zap.Int("installment_number", u.InstallmentNumber),
				zap.Ints("applied", result.Applied),
				zap.Error(err),
			)
			break
		}

		s.publishEvents(ctx, b)
		s.opts.metrics.InstallmentStatusChanged(ctx, string(inst.Status))
		s.appendPaymentRecord(ctx, actor, b, inst)
		result.Applied = append(result.Applied, u.InstallmentNumber)
	}

	resp := ToBookingResponse(b, s.opts.now())
	result.Booking = &resp
	return result, nil
}

// checkBatch rejects the whole batch if any update could not be applied
func checkBatch(b *booking.Booking, updates []UpdateInstallmentStatusRequest) error {
	if !b.IsActive() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("booking %s is %s", b.BookingNumber, b.Status))
	}
	for _, u := range updates {
		if _, ok := b.Schedule.Find(u.InstallmentNumber); !ok {
			return shared.NewNotFoundError("installment", u.InstallmentNumber)
		}
		if u.LateFees != nil && u.LateFees.IsNegative() {
			return shared.NewValidationError("late fee cannot be negative", "late_fees")
		}
	}
	return nil
}

// UpdateInstallmentNotes replaces the notes on one installment
func (s *BookingService) UpdateInstallmentNotes(ctx context.Context, actor shared.Actor, id uuid.UUID, number int, req UpdateInstallmentNotesRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "UpdateInstallmentNotes",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentNumber, number),
	)
	defer span.End()

	if err := validateInstallmentNumber(number); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutateInstallment(ctx, actor, id, func(b *booking.Booking) error {
		return b.UpdateInstallmentNotes(number, req.Notes, s.opts.now())
	})
}

// ApplyLateFee sets the late fee on one installment without changing its status
func (s *BookingService) ApplyLateFee(ctx context.Context, actor shared.Actor, id uuid.UUID, number int, req ApplyLateFeeRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "ApplyLateFee",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentNumber, number),
	)
	defer span.End()

	if err := validateInstallmentNumber(number); err != nil {
		return nil, err
	}
	if req.LateFees.IsNegative() {
		return nil, shared.NewValidationError("late fee cannot be negative", "late_fees")
	}
	return s.mutateInstallment(ctx, actor, id, func(b *booking.Booking) error {
		return b.ApplyInstallmentLateFee(number, req.LateFees, s.opts.now())
	})
}

func (s *BookingService) mutateInstallment(ctx context.Context, actor shared.Actor, id uuid.UUID, apply func(*booking.Booking) error) (*BookingResponse, error) {
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apply(b); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, b)
	resp := ToBookingResponse(b, s.opts.now())
	return &resp, nil
}

func validateInstallmentNumber(number int) error {
	if number < 1 {
		return shared.NewValidationError("installment number must be positive", "installment_number")
	}
	return nil
}

// appendPaymentRecord writes the payment-history entry for a status change.
// History is reporting-only, so a failure here is logged and swallowed.
func (s *BookingService) appendPaymentRecord(ctx context.Context, actor shared.Actor, b *booking.Booking, inst booking.Installment) {
	if s.payments == nil {
		return
	}
	record := booking.NewInstallmentPaymentRecord(actor, b, inst, s.opts.now())
	if err := s.payments.Save(ctx, record); err != nil {
		s.log(ctx).Warn("Failed to append payment history",
			zap.String("booking_id", b.ID.String()),
			zap.Int("installment_number", inst.Number),
			zap.String("status", string(inst.Status)),
			zap.Error(err),
		)
	}
}
