package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoneySplit(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		parts  int
		want   []string
	}{
		{"even split", "400000", 4, []string{"100000", "100000", "100000", "100000"}},
		{"last absorbs remainder", "100", 3, []string{"33.33", "33.33", "33.34"}},
		{"single part", "99.99", 1, []string{"99.99"}},
		{"cents remainder", "0.05", 2, []string{"0.02", "0.03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustMoney(decimal.RequireFromString(tt.amount), INR)

			parts, err := m.Split(tt.parts)
			require.NoError(t, err)
			require.Len(t, parts, len(tt.want))

			total := decimal.Zero
			for i, p := range parts {
				assert.True(t, p.Amount().Equal(decimal.RequireFromString(tt.want[i])), "part %d = %s", i, p.Amount())
				assert.Equal(t, INR, p.Currency())
				total = total.Add(p.Amount())
			}
			assert.True(t, total.Equal(m.Amount()))
		})
	}

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := MustMoney(decimal.NewFromInt(10), INR).Split(0)
		assert.Error(t, err)
	})
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		amount   string
		currency Currency
		want     string
	}{
		{"500000", INR, "₹5,00,000.00"},
		{"12345678.9", INR, "₹1,23,45,678.90"},
		{"999", INR, "₹999.00"},
		{"1234567.5", USD, "$1,234,567.50"},
		{"-250", EUR, "-€250.00"},
		{"100000", INR, "₹1,00,000.00"},
		{"1000", USD, "$1,000.00"},
		{"10", "XYZ", "XYZ 10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := MustMoney(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Format())
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	m := MustMoney(decimal.NewFromInt(100), INR)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"100.00","currency":"INR"}`, string(data))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "33.30 INR", MustMoney(decimal.RequireFromString("33.3"), INR).String())
}

func TestCurrencyIsValid(t *testing.T) {
	assert.True(t, INR.IsValid())
	assert.False(t, Currency("XYZ").IsValid())
}
