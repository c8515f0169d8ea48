package integration

import (
	"context"
	"testing"
	"time"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/persistence"
	"github.com/estatebook/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flowNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newActor() shared.Actor {
	return shared.Actor{TenantID: uuid.New(), UserID: uuid.New(), Username: "asha"}
}

func newPurchase(t *testing.T, actor shared.Actor) *booking.Booking {
	t.Helper()
	start := flowNow
	b, err := booking.NewBooking(actor, booking.NewBookingParams{
		Type:               booking.BookingTypePurchase,
		CustomerID:         uuid.New(),
		CustomerName:       "Asha Rao",
		PropertyID:         uuid.New(),
		PropertyName:       "Palm Grove 4B",
		TotalPropertyValue: decimal.RequireFromString("500000"),
		DownPayment:        decimal.RequireFromString("100000"),
		PaymentTerms:       booking.PaymentTermsInstallments,
		InstallmentCount:   3,
		StartDate:          &start,
	}, flowNow)
	require.NoError(t, err)
	return b
}

func TestBookingRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormBookingRepository(testDB.DB)
	ctx := context.Background()
	actor := newActor()

	t.Run("Save and FindByIDForTenant round-trips the schedule", func(t *testing.T) {
		b := newPurchase(t, actor)
		require.NoError(t, repo.Save(ctx, b))

		found, err := repo.FindByIDForTenant(ctx, actor.TenantID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.BookingNumber, found.BookingNumber)
		require.Len(t, found.Schedule, 3)
		assert.True(t, found.Schedule.Total().Equal(decimal.RequireFromString("400000")))
		assert.Equal(t, booking.InstallmentStatusPending, found.Schedule[0].Status)
	})

	t.Run("FindByIDForTenant hides other tenants", func(t *testing.T) {
		b := newPurchase(t, actor)
		require.NoError(t, repo.Save(ctx, b))

		_, err := repo.FindByIDForTenant(ctx, uuid.New(), b.ID)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
	})

	t.Run("FindByBookingNumber", func(t *testing.T) {
		b := newPurchase(t, actor)
		require.NoError(t, repo.Save(ctx, b))

		found, err := repo.FindByBookingNumber(ctx, actor.TenantID, b.BookingNumber)
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)
	})

	t.Run("SaveWithLock rejects a stale version", func(t *testing.T) {
		b := newPurchase(t, actor)
		require.NoError(t, repo.Save(ctx, b))

		first, err := repo.FindByIDForTenant(ctx, actor.TenantID, b.ID)
		require.NoError(t, err)
		second, err := repo.FindByIDForTenant(ctx, actor.TenantID, b.ID)
		require.NoError(t, err)

		require.NoError(t, first.UpdateInstallmentNotes(1, "cheque received", flowNow))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.UpdateInstallmentNotes(1, "stale edit", flowNow))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)
	})

	t.Run("CountForTenant with ActiveOnly skips cancelled bookings", func(t *testing.T) {
		other := newActor()
		active := newPurchase(t, other)
		cancelled := newPurchase(t, other)
		require.NoError(t, cancelled.Cancel("customer withdrew", flowNow))
		require.NoError(t, repo.Save(ctx, active))
		require.NoError(t, repo.Save(ctx, cancelled))

		count, err := repo.CountForTenant(ctx, other.TenantID, booking.BookingFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestInstallmentLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	actor := newActor()
	clock := func() time.Time { return flowNow }

	bookings := persistence.NewGormBookingRepository(testDB.DB)
	payments := persistence.NewGormPaymentRecordRepository(testDB.DB)
	files := storage.NewMemoryDocumentStorage("https://files.test")

	bookingService := bookingapp.NewBookingService(bookings, payments, files, bookingapp.WithClock(clock))
	reportService := bookingapp.NewReportService(bookings, payments, bookingapp.WithClock(clock))

	b := newPurchase(t, actor)
	require.NoError(t, bookings.Save(ctx, b))

	resp, err := bookingService.UpdateInstallmentStatus(ctx, actor, b.ID, bookingapp.UpdateInstallmentStatusRequest{
		InstallmentNumber: 1,
		Status:            "PAID",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Schedule[0].Status)
	assert.Equal(t, "PENDING", resp.Schedule[1].Status)

	history, err := reportService.PaymentHistory(ctx, actor, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "COMPLETED", history[0].PaymentStatus)
	assert.False(t, history[0].IsReconciled)

	reconciled, err := reportService.Reconcile(ctx, actor, history[0].ID)
	require.NoError(t, err)
	assert.True(t, reconciled.IsReconciled)

	unreconciled, err := reportService.UnreconciledPayments(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, unreconciled)

	asOf := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	overdue, err := reportService.OverdueInstallments(ctx, actor, &asOf)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, 2, overdue[0].InstallmentNumber)
}
