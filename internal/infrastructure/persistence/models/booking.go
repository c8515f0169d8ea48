package models

import (
	"time"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingModel is the persistence model for the Booking aggregate root
type BookingModel struct {
	TenantAggregateModel
	BookingNumber      string                `gorm:"type:varchar(32);not null;uniqueIndex:idx_bookings_tenant_number,priority:2"`
	Type               booking.BookingType   `gorm:"type:varchar(20);not null"`
	CustomerID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName       string                `gorm:"type:varchar(200);not null"`
	PropertyID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	PropertyName       string                `gorm:"type:varchar(200);not null"`
	SalespersonID      *uuid.UUID            `gorm:"type:uuid;index"`
	SalespersonName    string                `gorm:"type:varchar(200)"`
	Currency           string                `gorm:"type:varchar(3);not null"`
	TotalPropertyValue decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DownPayment        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	LoanAmount         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	MonthlyRent        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	SecurityDeposit    decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentTerms       booking.PaymentTerms  `gorm:"type:varchar(20);not null"`
	InstallmentCount   int                   `gorm:"not null"`
	StartDate          time.Time             `gorm:"type:date;not null"`
	Status             booking.BookingStatus `gorm:"type:varchar(20);not null;index"`
	IsFinanced         bool                  `gorm:"not null"`
	BankName           string                `gorm:"type:varchar(200)"`
	LoanTenure         int
	InterestRate       decimal.Decimal   `gorm:"type:decimal(6,3)"`
	EMIAmount          decimal.Decimal   `gorm:"column:emi_amount;type:decimal(18,2)"`
	Schedule           booking.Schedule  `gorm:"type:jsonb;not null"`
	Documents          booking.Documents `gorm:"type:jsonb;not null"`
	Notes              string            `gorm:"type:text"`
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking
func (m *BookingModel) ToDomain() *booking.Booking {
	b := &booking.Booking{
		BookingNumber:      m.BookingNumber,
		Type:               m.Type,
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		PropertyID:         m.PropertyID,
		PropertyName:       m.PropertyName,
		SalespersonID:      m.SalespersonID,
		SalespersonName:    m.SalespersonName,
		Currency:           valueobject.Currency(m.Currency),
		TotalPropertyValue: m.TotalPropertyValue,
		DownPayment:        m.DownPayment,
		LoanAmount:         m.LoanAmount,
		MonthlyRent:        m.MonthlyRent,
		SecurityDeposit:    m.SecurityDeposit,
		PaymentTerms:       m.PaymentTerms,
		InstallmentCount:   m.InstallmentCount,
		StartDate:          m.StartDate.UTC(),
		Status:             m.Status,
		Financing: booking.Financing{
			IsFinanced:   m.IsFinanced,
			BankName:     m.BankName,
			LoanTenure:   m.LoanTenure,
			InterestRate: m.InterestRate,
			EMIAmount:    m.EMIAmount,
		},
		Schedule:     m.Schedule,
		Documents:    m.Documents,
		Notes:        m.Notes,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
	b.TenantAggregateRoot = m.root()
	if b.Schedule == nil {
		b.Schedule = booking.Schedule{}
	}
	if b.Documents == nil {
		b.Documents = booking.Documents{}
	}
	return b
}

// FromDomain populates the persistence model from a domain Booking
func (m *BookingModel) FromDomain(b *booking.Booking) {
	m.setRoot(b.TenantAggregateRoot)
	m.BookingNumber = b.BookingNumber
	m.Type = b.Type
	m.CustomerID = b.CustomerID
	m.CustomerName = b.CustomerName
	m.PropertyID = b.PropertyID
	m.PropertyName = b.PropertyName
	m.SalespersonID = b.SalespersonID
	m.SalespersonName = b.SalespersonName
	m.Currency = string(b.Currency)
	m.TotalPropertyValue = b.TotalPropertyValue
	m.DownPayment = b.DownPayment
	m.LoanAmount = b.LoanAmount
	m.MonthlyRent = b.MonthlyRent
	m.SecurityDeposit = b.SecurityDeposit
	m.PaymentTerms = b.PaymentTerms
	m.InstallmentCount = b.InstallmentCount
	m.StartDate = b.StartDate
	m.Status = b.Status
	m.IsFinanced = b.Financing.IsFinanced
	m.BankName = b.Financing.BankName
	m.LoanTenure = b.Financing.LoanTenure
	m.InterestRate = b.Financing.InterestRate
	m.EMIAmount = b.Financing.EMIAmount
	m.Schedule = b.Schedule
	m.Documents = b.Documents
	m.Notes = b.Notes
	m.CancelledAt = b.CancelledAt
	m.CancelReason = b.CancelReason
}

// BookingModelFromDomain creates a persistence model from a domain Booking
func BookingModelFromDomain(b *booking.Booking) *BookingModel {
	m := &BookingModel{}
	m.FromDomain(b)
	return m
}
