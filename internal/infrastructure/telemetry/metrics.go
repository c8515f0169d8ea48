package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates an OTLP metrics pipeline exporting every interval.
// With enabled false it returns a provider backed by the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg Config, enabled bool, interval time.Duration, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled || !enabled {
		return mp, nil
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Metric attribute keys.
var (
	AttrBookingType       = attribute.Key("booking_type")
	AttrInstallmentStatus = attribute.Key("installment_status")
	AttrReplaced          = attribute.Key("replaced")
	AttrReason            = attribute.Key("reason")
)

// UploadSizeBuckets are histogram boundaries for proof uploads, in bytes.
var UploadSizeBuckets = []float64{64 << 10, 256 << 10, 1 << 20, 2 << 20, 5 << 20, 10 << 20}

// BookingMetrics records booking business counters on an OpenTelemetry meter.
type BookingMetrics struct {
	bookingsCreated  metric.Int64Counter
	statusChanges    metric.Int64Counter
	proofUploads     metric.Int64Counter
	uploadRejections metric.Int64Counter
	uploadSize       metric.Int64Histogram
}

// NewBookingMetrics registers the booking instruments on meter.
func NewBookingMetrics(meter metric.Meter) (*BookingMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("booking metrics: meter cannot be nil")
	}

	var (
		bm  BookingMetrics
		err error
	)
	if bm.bookingsCreated, err = meter.Int64Counter("brokerage_booking_created_total",
		metric.WithDescription("Bookings created"), metric.WithUnit("{bookings}")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if bm.statusChanges, err = meter.Int64Counter("brokerage_installment_status_changes_total",
		metric.WithDescription("Installment status transitions"), metric.WithUnit("{changes}")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if bm.proofUploads, err = meter.Int64Counter("brokerage_proof_uploads_total",
		metric.WithDescription("Installment proof uploads stored"), metric.WithUnit("{uploads}")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if bm.uploadRejections, err = meter.Int64Counter("brokerage_proof_upload_rejections_total",
		metric.WithDescription("Installment proof uploads rejected before storage"), metric.WithUnit("{uploads}")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if bm.uploadSize, err = meter.Int64Histogram("brokerage_proof_upload_size_bytes",
		metric.WithDescription("Size of stored installment proofs"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(UploadSizeBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	return &bm, nil
}

func (m *BookingMetrics) BookingCreated(ctx context.Context, bookingType string) {
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(AttrBookingType.String(bookingType)))
}

func (m *BookingMetrics) InstallmentStatusChanged(ctx context.Context, status string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(AttrInstallmentStatus.String(status)))
}

func (m *BookingMetrics) ProofUploaded(ctx context.Context, sizeBytes int64, replaced bool) {
	m.proofUploads.Add(ctx, 1, metric.WithAttributes(AttrReplaced.Bool(replaced)))
	m.uploadSize.Record(ctx, sizeBytes)
}

func (m *BookingMetrics) UploadRejected(ctx context.Context, reason string) {
	m.uploadRejections.Add(ctx, 1, metric.WithAttributes(AttrReason.String(reason)))
}
