package booking

import (
	"time"

	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
)

type options struct {
	logger          *zap.Logger
	now             Clock
	uploadLimit     int64
	defaultCurrency valueobject.Currency
	events          shared.EventPublisher
	metrics         Metrics
}

// Option configures the booking application services
type Option func(*options)

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithUploadLimit lowers the per-file upload limit. Values outside
// (0, booking.MaxDocumentSize] keep the 10 MB default.
func WithUploadLimit(limit int64) Option {
	return func(o *options) {
		if limit > 0 && limit <= booking.MaxDocumentSize {
			o.uploadLimit = limit
		}
	}
}

// WithDefaultCurrency sets the currency applied when a create request omits one
func WithDefaultCurrency(c valueobject.Currency) Option {
	return func(o *options) {
		if c.IsValid() {
			o.defaultCurrency = c
		}
	}
}

// WithEventPublisher sets where domain events go after a successful save
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.events = p
		}
	}
}

// WithMetrics sets the business metrics recorder
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:          zap.NewNop(),
		now:             time.Now,
		uploadLimit:     booking.MaxDocumentSize,
		defaultCurrency: valueobject.DefaultCurrency,
		metrics:         nopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
