package booking

import (
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the ledger status of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentStatusFor maps an installment status to the payment-history status
func PaymentStatusFor(s InstallmentStatus) PaymentStatus {
	if s.IsSettled() {
		return PaymentStatusCompleted
	}
	return PaymentStatusPending
}

// PaymentRecord is a payment-history entry written alongside installment
// status changes. It feeds reconciliation reports and never drives installment status.
type PaymentRecord struct {
	shared.BaseEntity
	TenantID            uuid.UUID
	BookingID           uuid.UUID
	BookingNumber       string
	InstallmentNumber   int
	Amount              decimal.Decimal
	Currency            valueobject.Currency
	PaymentStatus       PaymentStatus
	PaymentDate         time.Time
	IsReconciled        bool
	ReconciliationDate  *time.Time
	ApprovedByUserID    *uuid.UUID
	ResponsiblePersonID *uuid.UUID
	Notes               string
}

// NewInstallmentPaymentRecord records a status change of one installment
func NewInstallmentPaymentRecord(actor shared.Actor, b *Booking, inst Installment, now time.Time) *PaymentRecord {
	return &PaymentRecord{
		BaseEntity:          shared.NewBaseEntity(now),
		TenantID:            b.TenantID,
		BookingID:           b.ID,
		BookingNumber:       b.BookingNumber,
		InstallmentNumber:   inst.Number,
		Amount:              inst.Outstanding(),
		Currency:            b.Currency,
		PaymentStatus:       PaymentStatusFor(inst.Status),
		PaymentDate:         now,
		ResponsiblePersonID: actor.UserRef(),
		Notes:               inst.Notes,
	}
}

// Reconcile marks the record as matched against the bank statement
func (p *PaymentRecord) Reconcile(approver shared.Actor, now time.Time) error {
	if p.IsReconciled {
		return shared.NewDomainError(shared.CodeInvalidState, "payment is already reconciled")
	}
	p.IsReconciled = true
	p.ReconciliationDate = &now
	p.ApprovedByUserID = approver.UserRef()
	p.Touch(now)
	return nil
}
