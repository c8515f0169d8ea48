package booking

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the ledger status of a scheduled installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING" // Not yet paid
	InstallmentStatusPaid    InstallmentStatus = "PAID"    // Paid on time
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE" // Explicitly marked overdue by an operator
	InstallmentStatusLate    InstallmentStatus = "LATE"    // Paid after the due date
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusOverdue, InstallmentStatusLate:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsSettled returns true if money was received for the installment
func (s InstallmentStatus) IsSettled() bool {
	return s == InstallmentStatusPaid || s == InstallmentStatusLate
}

// Installment is one scheduled obligation within a booking's payment plan.
// It is a value object inside the Booking aggregate, stored as JSONB.
type Installment struct {
	Number    int               `json:"installment_number"`
	Amount    decimal.Decimal   `json:"amount"`
	DueDate   time.Time         `json:"due_date"`
	Status    InstallmentStatus `json:"status"`
	LateFees  decimal.Decimal   `json:"late_fees"`
	Notes     string            `json:"notes,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Outstanding returns amount plus accrued late fees
func (i Installment) Outstanding() decimal.Decimal {
	return i.Amount.Add(i.LateFees)
}

// DerivedStatus returns the status to display as of a date.
// A PENDING installment whose due date has passed reads as OVERDUE; the stored
// status is left untouched and must be changed through UpdateStatus.
func DerivedStatus(inst Installment, asOf time.Time) InstallmentStatus {
	if inst.Status == InstallmentStatusPending && valueobject.DateBefore(inst.DueDate, asOf) {
		return InstallmentStatusOverdue
	}
	return inst.Status
}

// Schedule is the ordered set of installments owned by one booking
type Schedule []Installment

// Value implements driver.Valuer interface for GORM to store as JSONB
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (s *Schedule) Scan(value interface{}) error {
	if value == nil {
		*s = Schedule{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Schedule: unsupported type")
	}

	return json.Unmarshal(bytes, s)
}

// Find returns the installment with the given number
func (s Schedule) Find(number int) (Installment, bool) {
	idx := s.indexOf(number)
	if idx < 0 {
		return Installment{}, false
	}
	return s[idx], true
}

// Total returns the sum of all installment amounts (late fees excluded)
func (s Schedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s {
		total = total.Add(inst.Amount)
	}
	return total
}

func (s Schedule) indexOf(number int) int {
	return slices.IndexFunc(s, func(inst Installment) bool { return inst.Number == number })
}

// GenerateSchedule splits totalValue - downPayment into count equal installments.
// Amounts are rounded down to minor units and the last installment absorbs the
// remainder, so the schedule sums exactly to the principal. Installment i falls
// due i months after startDate.
func GenerateSchedule(totalValue, downPayment decimal.Decimal, count int, startDate time.Time) (Schedule, error) {
	if count <= 0 {
		return nil, shared.NewValidationError("installment count must be positive")
	}
	if downPayment.IsNegative() {
		return nil, shared.NewValidationError("down payment cannot be negative")
	}
	if downPayment.GreaterThan(totalValue) {
		return nil, shared.NewValidationError("down payment cannot exceed total property value")
	}

	principal := valueobject.MustMoney(totalValue.Sub(downPayment), valueobject.DefaultCurrency)
	parts, err := principal.Split(count)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	amounts := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		amounts[i] = p.Amount()
	}
	return buildSchedule(amounts, startDate), nil
}

// GenerateRentSchedule produces months installments of monthlyRent each
func GenerateRentSchedule(monthlyRent decimal.Decimal, months int, startDate time.Time) (Schedule, error) {
	if months <= 0 {
		return nil, shared.NewValidationError("lease months must be positive")
	}
	if !monthlyRent.IsPositive() {
		return nil, shared.NewValidationError("monthly rent must be positive")
	}

	amounts := make([]decimal.Decimal, months)
	for i := range amounts {
		amounts[i] = monthlyRent
	}
	return buildSchedule(amounts, startDate), nil
}

func buildSchedule(amounts []decimal.Decimal, startDate time.Time) Schedule {
	start := valueobject.DateOnly(startDate)
	schedule := make(Schedule, len(amounts))
	for i, amount := range amounts {
		schedule[i] = Installment{
			Number:    i + 1,
			Amount:    amount,
			DueDate:   valueobject.AddMonths(start, i+1),
			Status:    InstallmentStatusPending,
			LateFees:  decimal.Zero,
			UpdatedAt: startDate,
		}
	}
	return schedule
}

// UpdateStatus returns a copy of the schedule with one installment's status replaced.
// No other installment is touched.
func UpdateStatus(schedule Schedule, number int, status InstallmentStatus, at time.Time) (Schedule, error) {
	if !status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid installment status %q", status))
	}
	return mutate(schedule, number, at, func(inst *Installment) {
		inst.Status = status
	})
}

// ApplyLateFee returns a copy of the schedule with one installment's late fee set
func ApplyLateFee(schedule Schedule, number int, fee decimal.Decimal, at time.Time) (Schedule, error) {
	if fee.IsNegative() {
		return nil, shared.NewValidationError("late fee cannot be negative")
	}
	return mutate(schedule, number, at, func(inst *Installment) {
		inst.LateFees = fee
	})
}

// UpdateNotes returns a copy of the schedule with one installment's notes replaced
func UpdateNotes(schedule Schedule, number int, notes string, at time.Time) (Schedule, error) {
	return mutate(schedule, number, at, func(inst *Installment) {
		inst.Notes = notes
	})
}

func mutate(schedule Schedule, number int, at time.Time, apply func(*Installment)) (Schedule, error) {
	idx := schedule.indexOf(number)
	if idx < 0 {
		return nil, shared.NewNotFoundError("installment", number)
	}
	out := slices.Clone(schedule)
	apply(&out[idx])
	out[idx].UpdatedAt = at
	return out, nil
}
