package persistence

import (
	"context"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRecordRepository implements booking.PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByIDForTenant finds a payment record by ID within a tenant
func (r *GormPaymentRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "payment record", id)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists payment records for a tenant
func (r *GormPaymentRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.PaymentRecordFilter) ([]booking.PaymentRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentRecordModel{}).Where("tenant_id = ?", tenantID)
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if filter.IsReconciled != nil {
		query = query.Where("is_reconciled = ?", *filter.IsReconciled)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentRecordSortFields, "payment_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Limited() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.PaymentRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewUpstreamError("list payment records", err)
	}
	records := make([]booking.PaymentRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Save inserts or updates a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *booking.PaymentRecord) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(models.PaymentRecordModelFromDomain(record)).Error; err != nil {
		return shared.NewUpstreamError("save payment record", err)
	}
	return nil
}

// Ensure GormPaymentRecordRepository implements PaymentRecordRepository
var _ booking.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
