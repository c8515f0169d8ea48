package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBookingRepository implements booking.BookingRepository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByIDForTenant finds a booking by ID within a tenant
func (r *GormBookingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "booking", id)
	}
	return model.ToDomain(), nil
}

// FindByBookingNumber finds a booking by its number within a tenant
func (r *GormBookingRepository) FindByBookingNumber(ctx context.Context, tenantID uuid.UUID, number string) (*booking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND booking_number = ?", tenantID, strings.ToUpper(number)).
		First(&model).Error; err != nil {
		return nil, translateError(err, "booking", number)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists bookings for a tenant with filtering and pagination
func (r *GormBookingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.BookingFilter) ([]booking.Booking, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BookingModel{}).Where("tenant_id = ?", tenantID), filter)

	orderBy := ValidateSortField(filter.OrderBy, BookingSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Limited() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.BookingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewUpstreamError("list bookings", err)
	}
	bookings := make([]booking.Booking, len(rows))
	for i := range rows {
		bookings[i] = *rows[i].ToDomain()
	}
	return bookings, nil
}

// CountForTenant counts bookings matching the filter
func (r *GormBookingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.BookingFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BookingModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.NewUpstreamError("count bookings", err)
	}
	return count, nil
}

func (r *GormBookingRepository) applyFilter(query *gorm.DB, filter booking.BookingFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SalespersonID != nil {
		query = query.Where("salesperson_id = ?", *filter.SalespersonID)
	}
	if filter.ActiveOnly {
		query = query.Where("status NOT IN ?", []booking.BookingStatus{booking.BookingStatusCancelled, booking.BookingStatusRejected})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("booking_number ILIKE ? OR customer_name ILIKE ? OR property_name ILIKE ?", pattern, pattern, pattern)
	}
	return query
}

// Save inserts or overwrites the booking row. Concurrent writers are not
// detected: the last write wins.
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	b.IncrementVersion()
	model := models.BookingModelFromDomain(b)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error; err != nil {
		b.Version--
		return shared.NewUpstreamError("save booking", err)
	}
	return nil
}

// SaveWithLock updates the booking only if the stored version still equals
// the version that was loaded. A stale version yields ErrConcurrencyConflict.
func (r *GormBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	expected := b.Version
	b.IncrementVersion()
	model := models.BookingModelFromDomain(b)

	result := r.db.WithContext(ctx).
		Model(&models.BookingModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", b.ID, b.TenantID, expected).
		Select("*").
		Omit("id", "tenant_id", "created_by", "created_at").
		Updates(model)
	if result.Error != nil {
		b.Version = expected
		return shared.NewUpstreamError("save booking", result.Error)
	}
	if result.RowsAffected == 0 {
		b.Version = expected
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// translateError maps GORM errors onto the domain taxonomy
func translateError(err error, resource string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, key)
	}
	return shared.NewUpstreamError("load "+resource, err)
}

// Ensure GormBookingRepository implements BookingRepository
var _ booking.BookingRepository = (*GormBookingRepository)(nil)
