package booking

import (
	"context"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BookingFilter defines filtering options for booking queries
type BookingFilter struct {
	shared.Filter
	Status        *BookingStatus // Filter by status
	Type          *BookingType   // Filter by purchase/rental
	CustomerID    *uuid.UUID     // Filter by customer
	SalespersonID *uuid.UUID     // Filter by salesperson
	ActiveOnly    bool           // Exclude cancelled and rejected bookings
}

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	// FindByIDForTenant finds a booking by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Booking, error)

	// FindByBookingNumber finds a booking by its human-facing number
	FindByBookingNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Booking, error)

	// FindAllForTenant lists bookings with filtering and pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) ([]Booking, error)

	// CountForTenant counts bookings matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) (int64, error)

	// Save creates or updates a booking (last write wins)
	Save(ctx context.Context, b *Booking) error

	// SaveWithLock saves only if the stored version still matches (optimistic locking)
	SaveWithLock(ctx context.Context, b *Booking) error
}

// PaymentRecordFilter defines filtering options for payment-history queries
type PaymentRecordFilter struct {
	shared.Filter
	BookingID    *uuid.UUID
	Status       *PaymentStatus
	IsReconciled *bool
}

// PaymentRecordRepository defines the interface for payment-history persistence
type PaymentRecordRepository interface {
	// FindByIDForTenant finds a payment record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentRecord, error)

	// FindAllForTenant lists payment records with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentRecordFilter) ([]PaymentRecord, error)

	// Save creates or updates a payment record
	Save(ctx context.Context, record *PaymentRecord) error
}
