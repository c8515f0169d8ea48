package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ==================== GenerateSchedule Tests ====================

func TestGenerateSchedule_SumsExactlyToPrincipal(t *testing.T) {
	tests := []struct {
		total, down string
		count       int
	}{
		{"500000", "100000", 4},
		{"100", "0", 3},
		{"1000000.01", "333.33", 7},
		{"99999.99", "0.01", 12},
		{"10", "10", 5},
		{"1", "0", 240},
	}

	for _, tt := range tests {
		t.Run(tt.total+"/"+tt.down, func(t *testing.T) {
			schedule, err := GenerateSchedule(dec(tt.total), dec(tt.down), tt.count, day(2024, 1, 1))
			require.NoError(t, err)
			require.Len(t, schedule, tt.count)

			principal := dec(tt.total).Sub(dec(tt.down))
			assert.True(t, schedule.Total().Equal(principal), "sum %s != principal %s", schedule.Total(), principal)

			for _, inst := range schedule[:tt.count-1] {
				assert.True(t, inst.Amount.Equal(schedule[0].Amount), "only the last installment may differ")
			}
		})
	}
}

func TestGenerateSchedule_NumbersAndDueDates(t *testing.T) {
	schedule, err := GenerateSchedule(dec("120000"), dec("0"), 12, day(2024, 1, 31))
	require.NoError(t, err)

	seen := map[int]bool{}
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Number)
		assert.False(t, seen[inst.Number], "duplicate installment number")
		seen[inst.Number] = true
		assert.Equal(t, InstallmentStatusPending, inst.Status)
		assert.True(t, inst.LateFees.IsZero())
	}
	assert.Len(t, seen, 12)

	assert.Equal(t, day(2024, 2, 29), schedule[0].DueDate)
	assert.Equal(t, day(2024, 3, 31), schedule[1].DueDate)
	assert.Equal(t, day(2025, 1, 31), schedule[11].DueDate)
}

func TestGenerateSchedule_LastAbsorbsRemainder(t *testing.T) {
	schedule, err := GenerateSchedule(dec("100"), dec("0"), 3, day(2024, 1, 1))
	require.NoError(t, err)
	assert.True(t, schedule[0].Amount.Equal(dec("33.33")))
	assert.True(t, schedule[1].Amount.Equal(dec("33.33")))
	assert.True(t, schedule[2].Amount.Equal(dec("33.34")))
}

func TestGenerateSchedule_Validation(t *testing.T) {
	tests := []struct {
		name        string
		total, down string
		count       int
	}{
		{"zero count", "1000", "0", 0},
		{"negative count", "1000", "0", -2},
		{"down payment exceeds total", "100000", "150000", 4},
		{"negative down payment", "1000", "-1", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSchedule(dec(tt.total), dec(tt.down), tt.count, day(2024, 1, 1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestGenerateRentSchedule(t *testing.T) {
	schedule, err := GenerateRentSchedule(dec("25000"), 11, day(2024, 4, 1))
	require.NoError(t, err)
	require.Len(t, schedule, 11)
	assert.True(t, schedule.Total().Equal(dec("275000")))
	assert.Equal(t, day(2024, 5, 1), schedule[0].DueDate)

	_, err = GenerateRentSchedule(dec("0"), 11, day(2024, 4, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

// ==================== Mutation Tests ====================

func TestUpdateStatus_IsPureAndIsolated(t *testing.T) {
	schedule, err := GenerateSchedule(dec("400"), dec("0"), 4, day(2024, 1, 1))
	require.NoError(t, err)
	at := day(2024, 3, 5)

	updated, err := UpdateStatus(schedule, 2, InstallmentStatusPaid, at)
	require.NoError(t, err)

	assert.Equal(t, InstallmentStatusPending, schedule[1].Status, "input schedule must not change")
	assert.Equal(t, InstallmentStatusPaid, updated[1].Status)
	assert.Equal(t, at, updated[1].UpdatedAt)
	for _, n := range []int{0, 2, 3} {
		assert.Equal(t, schedule[n], updated[n])
	}
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	schedule, err := GenerateSchedule(dec("400"), dec("0"), 4, day(2024, 1, 1))
	require.NoError(t, err)

	once, err := UpdateStatus(schedule, 3, InstallmentStatusLate, day(2024, 5, 1))
	require.NoError(t, err)
	twice, err := UpdateStatus(once, 3, InstallmentStatusLate, day(2024, 5, 1))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestUpdateStatus_Errors(t *testing.T) {
	schedule, err := GenerateSchedule(dec("400"), dec("0"), 4, day(2024, 1, 1))
	require.NoError(t, err)

	_, err = UpdateStatus(schedule, 9, InstallmentStatusPaid, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = UpdateStatus(schedule, 1, InstallmentStatus("BOUNCED"), time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestApplyLateFee(t *testing.T) {
	schedule, err := GenerateSchedule(dec("400"), dec("0"), 4, day(2024, 1, 1))
	require.NoError(t, err)

	updated, err := ApplyLateFee(schedule, 1, dec("250"), day(2024, 3, 1))
	require.NoError(t, err)
	assert.True(t, updated[0].LateFees.Equal(dec("250")))
	assert.True(t, updated[0].Outstanding().Equal(dec("350")))

	_, err = ApplyLateFee(schedule, 1, dec("-1"), time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = ApplyLateFee(schedule, 5, dec("1"), time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateNotes(t *testing.T) {
	schedule, err := GenerateSchedule(dec("400"), dec("0"), 4, day(2024, 1, 1))
	require.NoError(t, err)

	updated, err := UpdateNotes(schedule, 4, "cheque 1042", day(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, "cheque 1042", updated[3].Notes)
	assert.Empty(t, schedule[3].Notes)
}

// ==================== DerivedStatus Tests ====================

func TestDerivedStatus(t *testing.T) {
	inst := Installment{Number: 1, DueDate: day(2024, 1, 1), Status: InstallmentStatusPending}

	assert.Equal(t, InstallmentStatusPending, DerivedStatus(inst, day(2024, 1, 1)))
	assert.Equal(t, InstallmentStatusOverdue, DerivedStatus(inst, day(2024, 1, 2)))
	assert.Equal(t, InstallmentStatusPending, inst.Status, "stored status is not mutated")

	inst.Status = InstallmentStatusPaid
	assert.Equal(t, InstallmentStatusPaid, DerivedStatus(inst, day(2024, 6, 1)))
}

func TestSchedule_ValueScan(t *testing.T) {
	schedule, err := GenerateSchedule(dec("300"), dec("0"), 3, day(2024, 1, 1))
	require.NoError(t, err)

	raw, err := schedule.Value()
	require.NoError(t, err)

	var back Schedule
	require.NoError(t, back.Scan(raw))
	require.Len(t, back, 3)
	assert.True(t, back.Total().Equal(dec("300")))

	var empty Schedule
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
	assert.Error(t, empty.Scan(42))
}
