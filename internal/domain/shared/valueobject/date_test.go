package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"year rollover", date(2024, 11, 10), 3, date(2025, 2, 10)},
		{"clamps to leap february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamps to short month", date(2023, 3, 31), 1, date(2023, 4, 30)},
		{"zero months", date(2024, 5, 5), 0, date(2024, 5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.n))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 14, DaysBetween(date(2024, 1, 1), date(2024, 1, 15)))
	assert.Equal(t, 0, DaysBetween(date(2024, 1, 1), date(2024, 1, 1).Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(date(2024, 1, 2), date(2024, 1, 1).Add(12*time.Hour)))
}

func TestDateBefore(t *testing.T) {
	assert.True(t, DateBefore(date(2024, 1, 1), date(2024, 1, 2)))
	assert.False(t, DateBefore(date(2024, 1, 1).Add(20*time.Hour), date(2024, 1, 1)))
}
