package booking

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
)

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, f)

	f, err = ParseExportFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatXLSX, f)

	_, err = ParseExportFormat("pdf")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Equal(t, "bookings_20240115.xlsx", ExportFormatXLSX.FileName(testNow))
	assert.Equal(t, "text/csv; charset=utf-8", ExportFormatCSV.ContentType())
}

func exportFixture(t *testing.T) (*ExportService, *booking.Booking) {
	t.Helper()
	repo := new(MockBookingRepository)
	b := newStoredBooking(t)
	repo.On("FindAllForTenant", mock.Anything, testActor.TenantID, mock.MatchedBy(func(f booking.BookingFilter) bool {
		return f.PageSize == 0
	})).Return([]booking.Booking{*b}, nil)
	return NewExportService(repo, WithClock(func() time.Time { return testNow })), b
}

func TestExport_CSV(t *testing.T) {
	svc, b := exportFixture(t)
	var buf bytes.Buffer

	require.NoError(t, svc.Export(context.Background(), testActor, ExportFormatCSV, ListBookingsQuery{Page: 3, PageSize: 5}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Booking ID", "Property", "Customer", "Total Value", "Payment Terms", "Status"}, records[0])
	assert.Equal(t, []string{b.BookingNumber, "Palm Grove 4B", "Asha Rao", "500000.00", "INSTALLMENTS", "PENDING"}, records[1])
}

func TestExport_XLSX(t *testing.T) {
	svc, b := exportFixture(t)
	var buf bytes.Buffer

	require.NoError(t, svc.Export(context.Background(), testActor, ExportFormatXLSX, ListBookingsQuery{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ExportColumns, rows[0])
	assert.Equal(t, b.BookingNumber, rows[1][0])
	assert.Equal(t, "500000", rows[1][3])
	assert.Equal(t, "PENDING", rows[1][5])
}

func TestExport_UnknownFormat(t *testing.T) {
	svc, _ := exportFixture(t)
	err := svc.Export(context.Background(), testActor, ExportFormat("pdf"), ListBookingsQuery{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
