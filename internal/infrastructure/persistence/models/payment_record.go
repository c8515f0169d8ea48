package models

import (
	"time"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecordModel is the persistence model for payment-history entries
type PaymentRecordModel struct {
	BaseModel
	TenantID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	BookingID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	BookingNumber       string                `gorm:"type:varchar(32);not null"`
	InstallmentNumber   int                   `gorm:"not null"`
	Amount              decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Currency            string                `gorm:"type:varchar(3);not null"`
	PaymentStatus       booking.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	PaymentDate         time.Time             `gorm:"not null"`
	IsReconciled        bool                  `gorm:"not null;index"`
	ReconciliationDate  *time.Time
	ApprovedByUserID    *uuid.UUID `gorm:"type:uuid"`
	ResponsiblePersonID *uuid.UUID `gorm:"type:uuid"`
	Notes               string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() *booking.PaymentRecord {
	return &booking.PaymentRecord{
		BaseEntity:          m.entity(),
		TenantID:            m.TenantID,
		BookingID:           m.BookingID,
		BookingNumber:       m.BookingNumber,
		InstallmentNumber:   m.InstallmentNumber,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		PaymentStatus:       m.PaymentStatus,
		PaymentDate:         m.PaymentDate,
		IsReconciled:        m.IsReconciled,
		ReconciliationDate:  m.ReconciliationDate,
		ApprovedByUserID:    m.ApprovedByUserID,
		ResponsiblePersonID: m.ResponsiblePersonID,
		Notes:               m.Notes,
	}
}

// PaymentRecordModelFromDomain creates a persistence model from a domain PaymentRecord
func PaymentRecordModelFromDomain(p *booking.PaymentRecord) *PaymentRecordModel {
	m := &PaymentRecordModel{
		TenantID:            p.TenantID,
		BookingID:           p.BookingID,
		BookingNumber:       p.BookingNumber,
		InstallmentNumber:   p.InstallmentNumber,
		Amount:              p.Amount,
		Currency:            string(p.Currency),
		PaymentStatus:       p.PaymentStatus,
		PaymentDate:         p.PaymentDate,
		IsReconciled:        p.IsReconciled,
		ReconciliationDate:  p.ReconciliationDate,
		ApprovedByUserID:    p.ApprovedByUserID,
		ResponsiblePersonID: p.ResponsiblePersonID,
		Notes:               p.Notes,
	}
	m.setEntity(p.BaseEntity)
	return m
}
