package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB opens GORM on top of sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var bookingColumns = []string{
	"id", "created_at", "updated_at", "version", "tenant_id", "created_by",
	"booking_number", "type", "customer_id", "customer_name", "property_id", "property_name",
	"currency", "total_property_value", "down_payment", "loan_amount", "monthly_rent", "security_deposit",
	"payment_terms", "installment_count", "start_date", "status", "is_financed",
	"schedule", "documents", "notes",
}

const scheduleJSON = `[{"installment_number":1,"amount":"200000","due_date":"2024-02-01T00:00:00Z","status":"PAID","late_fees":"0"},` +
	`{"installment_number":2,"amount":"200000","due_date":"2024-03-01T00:00:00Z","status":"PENDING","late_fees":"0"}]`

func bookingRows(id, tenantID uuid.UUID) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(bookingColumns).AddRow(
		id.String(), now, now, 3, tenantID.String(), nil,
		"BK-20240101-ABC123", "PURCHASE", uuid.NewString(), "Asha Rao", uuid.NewString(), "Palm Grove 4B",
		"INR", "500000.00", "100000.00", "400000.00", "0", "0",
		"INSTALLMENTS", 2, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "CONFIRMED", false,
		scheduleJSON, `[]`, "",
	)
}

func TestGormBookingRepository_FindByIDForTenant(t *testing.T) {
	t.Run("maps the stored row", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)

		id, tenantID := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, id, 1).
			WillReturnRows(bookingRows(id, tenantID))

		b, err := repo.FindByIDForTenant(context.Background(), tenantID, id)
		require.NoError(t, err)

		assert.Equal(t, id, b.ID)
		assert.Equal(t, tenantID, b.TenantID)
		assert.Equal(t, 3, b.Version)
		assert.Equal(t, "BK-20240101-ABC123", b.BookingNumber)
		assert.True(t, b.LoanAmount.Equal(decimal.NewFromInt(400000)))
		require.Len(t, b.Schedule, 2)
		assert.Equal(t, booking.InstallmentStatusPaid, b.Schedule[0].Status)
		assert.True(t, b.Schedule[1].Amount.Equal(decimal.NewFromInt(200000)))
		assert.NotNil(t, b.Documents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found maps to domain error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "bookings"`).WillReturnError(gorm.ErrRecordNotFound)

		b, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		assert.Nil(t, b)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("driver failure is an upstream error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "bookings"`).WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		assert.Equal(t, shared.CodeUpstream, shared.ErrorCode(err))
	})
}

func TestGormBookingRepository_FindAllForTenant(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormBookingRepository(db)

	tenantID := uuid.New()
	status := booking.BookingStatusConfirmed
	filter := booking.BookingFilter{
		Filter:     shared.Filter{Page: 2, PageSize: 10, OrderBy: "customer_name; DROP TABLE bookings", OrderDir: "asc", Search: "palm"},
		Status:     &status,
		ActiveOnly: true,
	}

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE tenant_id = \$1 AND status = \$2 AND status NOT IN \(\$3,\$4\) AND .*ILIKE.* ORDER BY created_at ASC LIMIT \$\d+ OFFSET \$\d+`).
		WillReturnRows(bookingRows(uuid.New(), tenantID))

	bookings, err := repo.FindAllForTenant(context.Background(), tenantID, filter)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBookingRepository_CountForTenant(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormBookingRepository(db)

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForTenant(context.Background(), tenantID, booking.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func newStoredBooking(t *testing.T) *booking.Booking {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := booking.NewBooking(shared.Actor{TenantID: uuid.New(), UserID: uuid.New()}, booking.NewBookingParams{
		Type:               booking.BookingTypePurchase,
		CustomerID:         uuid.New(),
		CustomerName:       "Asha Rao",
		PropertyID:         uuid.New(),
		PropertyName:       "Palm Grove 4B",
		Currency:           "INR",
		TotalPropertyValue: decimal.NewFromInt(500000),
		DownPayment:        decimal.NewFromInt(100000),
		PaymentTerms:       booking.PaymentTermsInstallments,
		InstallmentCount:   4,
		StartDate:          &start,
	}, start)
	require.NoError(t, err)
	return b
}

func TestGormBookingRepository_Save(t *testing.T) {
	t.Run("upserts and bumps the version", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)
		b := newStoredBooking(t)

		mock.ExpectExec(`INSERT INTO "bookings" .* ON CONFLICT .* DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), b))
		assert.Equal(t, 2, b.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure restores the version", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)
		b := newStoredBooking(t)

		mock.ExpectExec(`INSERT INTO "bookings"`).WillReturnError(errors.New("disk full"))

		err := repo.Save(context.Background(), b)
		assert.ErrorIs(t, err, shared.ErrUpstream)
		assert.Equal(t, 1, b.Version)
	})
}

func TestGormBookingRepository_SaveWithLock(t *testing.T) {
	t.Run("matching version updates", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)
		b := newStoredBooking(t)

		mock.ExpectExec(`UPDATE "bookings" SET .* WHERE id = \$\d+ AND tenant_id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), b))
		assert.Equal(t, 2, b.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBookingRepository(db)
		b := newStoredBooking(t)

		mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), b)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, b.Version)
	})
}

func TestGormPaymentRecordRepository(t *testing.T) {
	t.Run("lists unreconciled records", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRecordRepository(db)

		tenantID := uuid.New()
		unreconciled := false
		now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "tenant_id", "booking_id", "booking_number",
			"installment_number", "amount", "currency", "payment_status", "payment_date", "is_reconciled",
		}).AddRow(uuid.NewString(), now, now, tenantID.String(), uuid.NewString(), "BK-20240101-ABC123",
			1, "100000.00", "INR", "COMPLETED", now, false)

		mock.ExpectQuery(`SELECT \* FROM "payment_records" WHERE tenant_id = \$1 AND is_reconciled = \$2 ORDER BY payment_date DESC`).
			WithArgs(tenantID, false).
			WillReturnRows(rows)

		records, err := repo.FindAllForTenant(context.Background(), tenantID, booking.PaymentRecordFilter{IsReconciled: &unreconciled})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, booking.PaymentStatusCompleted, records[0].PaymentStatus)
		assert.Equal(t, 1, records[0].InstallmentNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("saves a record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRecordRepository(db)

		b := newStoredBooking(t)
		record := booking.NewInstallmentPaymentRecord(shared.Actor{TenantID: b.TenantID}, b, b.Schedule[0], time.Now())

		mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), record))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestValidateSort(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("  asc "))
	assert.Equal(t, "DESC", ValidateSortOrder("ASC; DROP TABLE bookings;--"))
	assert.Equal(t, "customer_name", ValidateSortField("customer_name", BookingSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password", BookingSortFields, "created_at"))
}
