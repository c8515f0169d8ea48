package booking

import (
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking event types. Each event is stamped with the booking's UpdatedAt
// after the mutation that raised it.
const (
	EventTypeBookingCreated           = "BookingCreated"
	EventTypeBookingUpdated           = "BookingUpdated"
	EventTypeBookingCancelled         = "BookingCancelled"
	EventTypeInstallmentStatusChanged = "InstallmentStatusChanged"
	EventTypeInstallmentProofAttached = "InstallmentProofAttached"
)

// BookingCreatedEvent is raised when a new booking is created
type BookingCreatedEvent struct {
	shared.EventHeader
	BookingNumber      string          `json:"booking_number"`
	Type               BookingType     `json:"type"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	PropertyID         uuid.UUID       `json:"property_id"`
	TotalPropertyValue decimal.Decimal `json:"total_property_value"`
	PaymentTerms       PaymentTerms    `json:"payment_terms"`
	InstallmentCount   int             `json:"installment_count"`
}

// NewBookingCreatedEvent creates a new BookingCreatedEvent
func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		EventHeader:        shared.NewEventHeader(EventTypeBookingCreated, b.ID, b.TenantID, b.UpdatedAt),
		BookingNumber:      b.BookingNumber,
		Type:               b.Type,
		CustomerID:         b.CustomerID,
		PropertyID:         b.PropertyID,
		TotalPropertyValue: b.TotalPropertyValue,
		PaymentTerms:       b.PaymentTerms,
		InstallmentCount:   len(b.Schedule),
	}
}

// BookingUpdatedEvent is raised when the edit form is saved
type BookingUpdatedEvent struct {
	shared.EventHeader
	BookingNumber       string        `json:"booking_number"`
	Status              BookingStatus `json:"status"`
	ScheduleRegenerated bool          `json:"schedule_regenerated"`
}

// NewBookingUpdatedEvent creates a new BookingUpdatedEvent
func NewBookingUpdatedEvent(b *Booking, regenerated bool) *BookingUpdatedEvent {
	return &BookingUpdatedEvent{
		EventHeader:         shared.NewEventHeader(EventTypeBookingUpdated, b.ID, b.TenantID, b.UpdatedAt),
		BookingNumber:       b.BookingNumber,
		Status:              b.Status,
		ScheduleRegenerated: regenerated,
	}
}

// BookingCancelledEvent is raised on soft cancellation
type BookingCancelledEvent struct {
	shared.EventHeader
	BookingNumber string `json:"booking_number"`
	Reason        string `json:"reason,omitempty"`
}

// NewBookingCancelledEvent creates a new BookingCancelledEvent
func NewBookingCancelledEvent(b *Booking, reason string) *BookingCancelledEvent {
	return &BookingCancelledEvent{
		EventHeader:   shared.NewEventHeader(EventTypeBookingCancelled, b.ID, b.TenantID, b.UpdatedAt),
		BookingNumber: b.BookingNumber,
		Reason:        reason,
	}
}

// InstallmentStatusChangedEvent is raised when an operator records a status change
type InstallmentStatusChangedEvent struct {
	shared.EventHeader
	BookingNumber     string            `json:"booking_number"`
	InstallmentNumber int               `json:"installment_number"`
	OldStatus         InstallmentStatus `json:"old_status"`
	NewStatus         InstallmentStatus `json:"new_status"`
	Amount            decimal.Decimal   `json:"amount"`
	LateFees          decimal.Decimal   `json:"late_fees"`
}

// NewInstallmentStatusChangedEvent creates a new InstallmentStatusChangedEvent
func NewInstallmentStatusChangedEvent(b *Booking, old InstallmentStatus, inst Installment) *InstallmentStatusChangedEvent {
	return &InstallmentStatusChangedEvent{
		EventHeader:       shared.NewEventHeader(EventTypeInstallmentStatusChanged, b.ID, b.TenantID, b.UpdatedAt),
		BookingNumber:     b.BookingNumber,
		InstallmentNumber: inst.Number,
		OldStatus:         old,
		NewStatus:         inst.Status,
		Amount:            inst.Amount,
		LateFees:          inst.LateFees,
	}
}

// InstallmentProofAttachedEvent is raised when a proof document is stored
type InstallmentProofAttachedEvent struct {
	shared.EventHeader
	BookingNumber     string    `json:"booking_number"`
	InstallmentNumber int       `json:"installment_number"`
	DocumentID        uuid.UUID `json:"document_id"`
	Replaced          bool      `json:"replaced"`
}

// NewInstallmentProofAttachedEvent creates a new InstallmentProofAttachedEvent
func NewInstallmentProofAttachedEvent(b *Booking, number int, doc Document, replaced bool) *InstallmentProofAttachedEvent {
	return &InstallmentProofAttachedEvent{
		EventHeader:       shared.NewEventHeader(EventTypeInstallmentProofAttached, b.ID, b.TenantID, b.UpdatedAt),
		BookingNumber:     b.BookingNumber,
		InstallmentNumber: number,
		DocumentID:        doc.ID,
		Replaced:          replaced,
	}
}
