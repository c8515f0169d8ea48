package booking

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

// ExportFormat selects the file type produced by ExportService
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts "csv" (the default when empty) or "xlsx"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	}
	return "", shared.NewValidationError("unsupported export format", "format")
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the attachment name for an export taken at the given time
func (f ExportFormat) FileName(at time.Time) string {
	return fmt.Sprintf("bookings_%s.%s", at.Format("20060102"), f)
}

// ExportColumns is the header row of every booking export
var ExportColumns = []string{"Booking ID", "Property", "Customer", "Total Value", "Payment Terms", "Status"}

const exportSheet = "Bookings"

// ExportService writes booking lists as CSV or XLSX
type ExportService struct {
	bookings booking.BookingRepository
	opts     options
}

// NewExportService creates a new ExportService
func NewExportService(bookings booking.BookingRepository, opts ...Option) *ExportService {
	return &ExportService{bookings: bookings, opts: buildOptions(opts)}
}

// Export writes every booking matching the query (paging ignored) to w
func (s *ExportService) Export(ctx context.Context, actor shared.Actor, format ExportFormat, q ListBookingsQuery, w io.Writer) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ExportService", "Export",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrExportFormat, string(format)))
	defer span.End()

	if err := requireTenant(actor); err != nil {
		return err
	}
	if err := validateRequest(q); err != nil {
		return err
	}
	filter := q.toFilter()
	filter.Page, filter.PageSize = 1, 0

	bookings, err := s.bookings.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	switch format {
	case ExportFormatCSV:
		err = writeCSV(w, bookings)
	case ExportFormatXLSX:
		err = writeXLSX(w, bookings)
	default:
		return shared.NewValidationError("unsupported export format", "format")
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}

	logger.Enrich(ctx, s.opts.logger).Info("Bookings exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(bookings)),
	)
	return nil
}

func exportRow(b *booking.Booking) []string {
	return []string{
		b.BookingNumber,
		b.PropertyName,
		b.CustomerName,
		b.TotalPropertyValue.StringFixed(2),
		string(b.PaymentTerms),
		string(b.Status),
	}
}

func writeCSV(w io.Writer, bookings []booking.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for i := range bookings {
		if err := cw.Write(exportRow(&bookings[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, bookings []booking.Booking) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(ExportColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i := range bookings {
		b := &bookings[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			b.BookingNumber,
			b.PropertyName,
			b.CustomerName,
			b.TotalPropertyValue.InexactFloat64(),
			string(b.PaymentTerms),
			string(b.Status),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "F", 22); err != nil {
		return err
	}
	return f.Write(w)
}
