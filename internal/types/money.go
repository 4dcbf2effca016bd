package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact monetary amount expressed as an integer number of cents.
// Arithmetic that can produce fractional cents rounds to the nearest cent.
// Money is never represented as a float.
type Money int64

// NewMoney creates a Money from an integer number of cents.
func NewMoney(cents int64) Money {
	return Money(cents)
}

// NewMoneyFromDecimal converts a decimal amount of cents to Money,
// rounding to the nearest cent.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(0).IntPart())
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount in cents as a decimal for rate arithmetic.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) Sub(other Money) Money {
	return m - other
}

// MulDecimal multiplies the amount by an arbitrary decimal factor and rounds
// to the nearest cent.
func (m Money) MulDecimal(factor decimal.Decimal) Money {
	return NewMoneyFromDecimal(m.Decimal().Mul(factor))
}

// MulInt multiplies the amount by an integer scalar.
func (m Money) MulInt(n int64) Money {
	return Money(int64(m) * n)
}

// DivInt divides the amount by an integer scalar, rounding to the nearest cent.
func (m Money) DivInt(n int64) Money {
	return NewMoneyFromDecimal(m.Decimal().Div(decimal.NewFromInt(n)))
}

func (m Money) IsZero() bool {
	return m == 0
}

func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) Equal(other Money) bool {
	return m == other
}

func (m Money) GreaterThan(other Money) bool {
	return m > other
}

func (m Money) LessThan(other Money) bool {
	return m < other
}

// String renders the amount as dollars and cents, e.g. "12.95".
func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
