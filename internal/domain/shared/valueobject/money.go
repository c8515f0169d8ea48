package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AED Currency = "AED"
)

// DefaultCurrency applies when a booking names none
const DefaultCurrency = INR

// MinorUnitPlaces is the scale installment amounts are rounded to. Every
// supported currency has two decimal places.
const MinorUnitPlaces int32 = 2

var currencySymbols = map[Currency]string{
	INR: "₹",
	USD: "$",
	EUR: "€",
	GBP: "£",
	AED: "AED ",
}

func (c Currency) IsValid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Money is an immutable amount in one currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney is NewMoney for callers that already hold a valid currency
func MustMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }

// Split divides m into parts equal shares truncated to minor units. The final
// share takes the remainder, so 100 over 3 is 33.33, 33.33, 33.34 and the
// shares always add up to m exactly.
func (m Money) Split(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("cannot split into %d parts", parts)
	}
	share := m.amount.Div(decimal.NewFromInt(int64(parts))).Truncate(MinorUnitPlaces)
	remainder := m.amount.Sub(share.Mul(decimal.NewFromInt(int64(parts))))

	out := make([]Money, parts)
	for i := range out {
		out[i] = Money{amount: share, currency: m.currency}
	}
	out[parts-1].amount = share.Add(remainder)
	return out, nil
}

func (m Money) String() string {
	return m.amount.StringFixed(MinorUnitPlaces) + " " + string(m.currency)
}

// Format renders m for people: currency symbol, grouped digits and two
// decimals. INR groups in lakhs and crores (₹5,00,000.00), the rest in
// thousands ($500,000.00).
func (m Money) Format() string {
	whole, frac, _ := strings.Cut(m.amount.Abs().StringFixed(MinorUnitPlaces), ".")
	if m.currency == INR {
		whole = groupDigits(whole, 2)
	} else {
		whole = groupDigits(whole, 3)
	}

	symbol, ok := currencySymbols[m.currency]
	if !ok {
		symbol = string(m.currency) + " "
	}
	sign := ""
	if m.amount.IsNegative() {
		sign = "-"
	}
	return sign + symbol + whole + "." + frac
}

// groupDigits keeps the last three digits together and separates the rest
// into groups of size, counting from the right.
func groupDigits(digits string, size int) string {
	if len(digits) <= 3 {
		return digits
	}
	head, groups := digits[:len(digits)-3], []string{digits[len(digits)-3:]}
	for len(head) > size {
		groups = append(groups, head[len(head)-size:])
		head = head[:len(head)-size]
	}
	groups = append(groups, head)

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		if i > 0 {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{m.amount.StringFixed(MinorUnitPlaces), m.currency})
}
