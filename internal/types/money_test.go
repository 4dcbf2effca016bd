package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyRounding(t *testing.T) {
	// 1295 / 30 = 43.1666... rounds to 43
	assert.Equal(t, NewMoney(43), NewMoney(1295).DivInt(30))
	// 1250 / 100 * 50 = 625 exactly
	assert.Equal(t, NewMoney(625), NewMoney(1250).MulDecimal(decimal.NewFromFloat(0.5)))
	// 999 * 0.7 = 699.3 rounds to 699
	assert.Equal(t, NewMoney(699), NewMoney(999).MulDecimal(decimal.NewFromFloat(0.7)))
	// 50 cents * 0.5 = 25
	assert.Equal(t, NewMoney(25), NewMoney(50).MulDecimal(decimal.NewFromFloat(0.5)))
	// half a cent rounds away from zero
	assert.Equal(t, NewMoney(1), NewMoneyFromDecimal(decimal.NewFromFloat(0.5)))
}

func TestMoneyArithmetic(t *testing.T) {
	assert.Equal(t, NewMoney(300), NewMoney(100).Add(NewMoney(200)))
	assert.Equal(t, NewMoney(-100), NewMoney(100).Sub(NewMoney(200)))
	assert.Equal(t, NewMoney(3885), NewMoney(1295).MulInt(3))
	assert.True(t, NewMoney(0).IsZero())
	assert.True(t, NewMoney(1).IsPositive())
	assert.False(t, NewMoney(-1).IsPositive())
	assert.True(t, NewMoney(200).GreaterThan(NewMoney(100)))
	assert.True(t, NewMoney(100).LessThan(NewMoney(200)))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "12.95", NewMoney(1295).String())
	assert.Equal(t, "0.05", NewMoney(5).String())
	assert.Equal(t, "0.00", NewMoney(0).String())
	assert.Equal(t, "-3.50", NewMoney(-350).String())
}
