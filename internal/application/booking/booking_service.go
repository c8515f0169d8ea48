package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

const serviceName = "BookingService"

// BookingService handles booking use cases: creation, edits, installment
// status changes and proof documents.
type BookingService struct {
	bookings booking.BookingRepository
	payments booking.PaymentRecordRepository
	storage  DocumentStorage
	opts     options
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings booking.BookingRepository,
	payments booking.PaymentRecordRepository,
	storage DocumentStorage,
	opts ...Option,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		payments: payments,
		storage:  storage,
		opts:     buildOptions(opts),
	}
}

func requireTenant(actor shared.Actor) error {
	if actor.TenantID == uuid.Nil {
		return shared.NewDomainError(shared.CodeUnauthorized, "tenant is required")
	}
	return nil
}

// Create validates the request, builds the booking with its schedule and saves it.
// Validation failures return before the repository is touched.
func (s *BookingService) Create(ctx context.Context, actor shared.Actor, req CreateBookingRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Create", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	params, err := s.newBookingParams(req)
	if err != nil {
		return nil, err
	}
	now := s.opts.now()
	b, err := booking.NewBooking(actor, params, now)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)
	s.opts.metrics.BookingCreated(ctx, string(b.Type))

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBookingID, b.ID.String(),
		telemetry.SpanAttrBookingNumber, b.BookingNumber,
		telemetry.SpanAttrBookingType, string(b.Type),
	)
	s.log(ctx).Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("booking_number", b.BookingNumber),
		zap.String("payment_terms", string(b.PaymentTerms)),
		zap.Int("installments", len(b.Schedule)),
	)

	resp := ToBookingResponse(b, now)
	return &resp, nil
}

func (s *BookingService) newBookingParams(req CreateBookingRequest) (booking.NewBookingParams, error) {
	currency := valueobject.Currency(req.Currency)
	if currency == "" {
		currency = s.opts.defaultCurrency
	}
	params := booking.NewBookingParams{
		Type:               booking.BookingType(req.Type),
		CustomerID:         req.CustomerID,
		CustomerName:       req.CustomerName,
		PropertyID:         req.PropertyID,
		PropertyName:       req.PropertyName,
		SalespersonID:      req.SalespersonID,
		SalespersonName:    req.SalespersonName,
		Currency:           currency,
		TotalPropertyValue: req.TotalPropertyValue,
		DownPayment:        req.DownPayment,
		MonthlyRent:        req.MonthlyRent,
		SecurityDeposit:    req.SecurityDeposit,
		PaymentTerms:       booking.PaymentTerms(req.PaymentTerms),
		InstallmentCount:   req.InstallmentCount,
		Notes:              req.Notes,
	}
	if req.StartDate != "" {
		start, err := time.Parse(DateLayout, req.StartDate)
		if err != nil {
			return params, shared.NewValidationError("invalid date", "start_date")
		}
		params.StartDate = &start
	}
	if req.Financing != nil {
		params.Financing = req.Financing.toDomain()
	}
	return params, nil
}

func (f FinancingRequest) toDomain() booking.Financing {
	return booking.Financing{
		IsFinanced:   f.IsFinanced,
		BankName:     strings.TrimSpace(f.BankName),
		LoanTenure:   f.LoanTenure,
		InterestRate: f.InterestRate,
		EMIAmount:    f.EMIAmount,
	}
}

// Get returns a booking by id
func (s *BookingService) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Get",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()))
	defer span.End()

	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToBookingResponse(b, s.opts.now())
	return &resp, nil
}

// GetByNumber returns a booking by its human-facing number
func (s *BookingService) GetByNumber(ctx context.Context, actor shared.Actor, number string) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "GetByNumber",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingNumber, number))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	b, err := s.bookings.FindByBookingNumber(ctx, actor.TenantID, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	resp := ToBookingResponse(b, s.opts.now())
	return &resp, nil
}

// List returns a page of bookings matching the query
func (s *BookingService) List(ctx context.Context, actor shared.Actor, q ListBookingsQuery) (*shared.Paginated[BookingListItem], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "List", telemetry.WithActor(actor))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(q); err != nil {
		return nil, err
	}

	filter := q.toFilter()
	items, err := s.bookings.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	total, err := s.bookings.CountForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rows := make([]BookingListItem, len(items))
	for i := range items {
		rows[i] = ToBookingListItem(&items[i])
	}
	page := shared.NewPaginated(rows, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (q ListBookingsQuery) toFilter() booking.BookingFilter {
	base := shared.DefaultFilter()
	base.Search = strings.TrimSpace(q.Search)
	if q.Page > 0 {
		base.Page = q.Page
	}
	if q.PageSize > 0 {
		base.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		base.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		base.OrderDir = strings.ToLower(q.OrderDir)
	}

	filter := booking.BookingFilter{Filter: base, ActiveOnly: q.ActiveOnly}
	if q.Status != "" {
		status := booking.BookingStatus(q.Status)
		filter.Status = &status
	}
	if q.Type != "" {
		t := booking.BookingType(q.Type)
		filter.Type = &t
	}
	if q.CustomerID != "" {
		if id, err := uuid.Parse(q.CustomerID); err == nil {
			filter.CustomerID = &id
		}
	}
	return filter
}

// Update applies an edit-form patch. When req.Version is set the save is
// version-checked and a stale version fails with CONCURRENCY_CONFLICT;
// otherwise the last write wins.
func (s *BookingService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateBookingRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Update",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != b.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	now := s.opts.now()
	regenerated, err := b.Update(req.toPatch(), now)
	if err != nil {
		return nil, err
	}

	save := s.bookings.Save
	if req.Version != nil {
		save = s.bookings.SaveWithLock
	}
	if err := save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)

	s.log(ctx).Info("Booking updated",
		zap.String("booking_id", b.ID.String()),
		zap.Bool("schedule_regenerated", regenerated),
	)
	resp := ToBookingResponse(b, now)
	return &resp, nil
}

func (r UpdateBookingRequest) toPatch() booking.BookingPatch {
	patch := booking.BookingPatch{
		CustomerName:       r.CustomerName,
		PropertyName:       r.PropertyName,
		SalespersonID:      r.SalespersonID,
		SalespersonName:    r.SalespersonName,
		TotalPropertyValue: r.TotalPropertyValue,
		DownPayment:        r.DownPayment,
		MonthlyRent:        r.MonthlyRent,
		SecurityDeposit:    r.SecurityDeposit,
		InstallmentCount:   r.InstallmentCount,
		Notes:              r.Notes,
	}
	if r.PaymentTerms != nil {
		terms := booking.PaymentTerms(*r.PaymentTerms)
		patch.PaymentTerms = &terms
	}
	if r.Status != nil {
		status := booking.BookingStatus(*r.Status)
		patch.Status = &status
	}
	if r.Financing != nil {
		f := r.Financing.toDomain()
		patch.Financing = &f
	}
	return patch
}

// Cancel soft-cancels a booking
func (s *BookingService) Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID, req CancelBookingRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Cancel",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()))
	defer span.End()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	if err := b.Cancel(strings.TrimSpace(req.Reason), now); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)

	s.log(ctx).Info("Booking cancelled", zap.String("booking_id", b.ID.String()))
	resp := ToBookingResponse(b, now)
	return &resp, nil
}

func (s *BookingService) load(ctx context.Context, actor shared.Actor, id uuid.UUID) (*booking.Booking, error) {
	if err := requireTenant(actor); err != nil {
		return nil, err
	}
	return s.bookings.FindByIDForTenant(ctx, actor.TenantID, id)
}

// publishEvents hands the aggregate's pending events to the publisher and
// clears them. Handler failures are logged; the save already happened.
func (s *BookingService) publishEvents(ctx context.Context, b *booking.Booking) {
	events := b.PullDomainEvents()
	if s.opts.events == nil || len(events) == 0 {
		return
	}
	if err := s.opts.events.Publish(ctx, events...); err != nil {
		s.log(ctx).Warn("Failed to publish booking events",
			zap.String("booking_id", b.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.opts.logger)
}
