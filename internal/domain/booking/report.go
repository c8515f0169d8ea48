package booking

import (
	"sort"
	"time"

	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentView is one installment flattened out of its booking for reports
type InstallmentView struct {
	BookingID       uuid.UUID
	BookingNumber   string
	CustomerName    string
	PropertyName    string
	Currency        valueobject.Currency
	Installment     Installment
	EffectiveStatus InstallmentStatus
	DaysOverdue     int
}

func flatten(bookings []Booking, asOf time.Time, keep func(Installment) bool) []InstallmentView {
	var out []InstallmentView
	for _, b := range bookings {
		for _, inst := range b.Schedule {
			if !keep(inst) {
				continue
			}
			out = append(out, InstallmentView{
				BookingID:       b.ID,
				BookingNumber:   b.BookingNumber,
				CustomerName:    b.CustomerName,
				PropertyName:    b.PropertyName,
				Currency:        b.Currency,
				Installment:     inst,
				EffectiveStatus: DerivedStatus(inst, asOf),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Installment.DueDate.Before(out[j].Installment.DueDate)
	})
	return out
}

// PendingInstallments lists installments that are still PENDING and not yet due
func PendingInstallments(bookings []Booking, asOf time.Time) []InstallmentView {
	day := valueobject.DateOnly(asOf)
	return flatten(bookings, asOf, func(inst Installment) bool {
		return DerivedStatus(inst, asOf) == InstallmentStatusPending &&
			!valueobject.DateOnly(inst.DueDate).Before(day)
	})
}

// OverdueInstallments lists unpaid installments whose due date has passed,
// annotated with the whole days elapsed since the due date.
func OverdueInstallments(bookings []Booking, asOf time.Time) []InstallmentView {
	day := valueobject.DateOnly(asOf)
	views := flatten(bookings, asOf, func(inst Installment) bool {
		return inst.Status != InstallmentStatusPaid &&
			valueobject.DateOnly(inst.DueDate).Before(day)
	})
	for i := range views {
		views[i].DaysOverdue = valueobject.DaysBetween(valueobject.DateOnly(views[i].Installment.DueDate), day)
	}
	return views
}

// UnreconciledPayments keeps the records not yet reconciled
func UnreconciledPayments(records []PaymentRecord) []PaymentRecord {
	var out []PaymentRecord
	for _, r := range records {
		if !r.IsReconciled {
			out = append(out, r)
		}
	}
	return out
}

// PaymentSummary aggregates payment records for the dashboard
type PaymentSummary struct {
	Total           int
	CountByStatus   map[PaymentStatus]int
	CompletedAmount decimal.Decimal
	Unreconciled    int
}

// Summarize counts records by status and sums the amount of COMPLETED records only
func Summarize(records []PaymentRecord) PaymentSummary {
	s := PaymentSummary{
		CountByStatus:   make(map[PaymentStatus]int),
		CompletedAmount: decimal.Zero,
	}
	for _, r := range records {
		s.Total++
		s.CountByStatus[r.PaymentStatus]++
		if r.PaymentStatus == PaymentStatusCompleted {
			s.CompletedAmount = s.CompletedAmount.Add(r.Amount)
		}
		if !r.IsReconciled {
			s.Unreconciled++
		}
	}
	return s
}
