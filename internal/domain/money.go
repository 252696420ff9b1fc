package domain

import (
	"errors"

	"github.com/shopspring/decimal" // Exact decimal arithmetic
)

// ErrSubCent is returned when an amount carries more than two decimal places
var ErrSubCent = errors.New("amount has more than two decimal places")

// Money is an amount in cents. It is stored as an integer column and
// rendered as a decimal number in JSON, so 1250 reads and writes as 12.5.
type Money int64

// NewMoney converts a major-unit amount to cents, rounding half away from zero
func NewMoney(amount float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(amount))
}

// MoneyFromDecimal rounds d to the nearest cent
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// ParseMoney reads a decimal string such as "19.99"; sub-cent precision is rejected
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return exactMoney(d)
}

func exactMoney(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Round(2)) {
		return 0, ErrSubCent
	}
	return MoneyFromDecimal(d), nil
}

// Cents returns the amount in minor units
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Float64 returns the amount in major units, for display and tests
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := exactMoney(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
