package booking

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
)

// MockBookingRepository is a mock implementation of booking.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByBookingNumber(ctx context.Context, tenantID uuid.UUID, number string) (*booking.Booking, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.BookingFilter) ([]booking.Booking, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.BookingFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// MockPaymentRecordRepository is a mock implementation of booking.PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter booking.PaymentRecordFilter) ([]booking.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) Save(ctx context.Context, record *booking.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockDocumentStorage is a mock implementation of DocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// recordingMetrics counts calls to the Metrics port
type recordingMetrics struct {
	created   []string
	statuses  []string
	uploads   []bool
	rejection []string
}

func (m *recordingMetrics) BookingCreated(_ context.Context, bookingType string) {
	m.created = append(m.created, bookingType)
}

func (m *recordingMetrics) InstallmentStatusChanged(_ context.Context, status string) {
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) ProofUploaded(_ context.Context, _ int64, replaced bool) {
	m.uploads = append(m.uploads, replaced)
}

func (m *recordingMetrics) UploadRejected(_ context.Context, reason string) {
	m.rejection = append(m.rejection, reason)
}
