// FILE: exchange_test.go
package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSizingRulesSnapDown(t *testing.T) {
	r := sizingRules{
		priceTick:   decimal.RequireFromString("0.01"),
		qtyStep:     decimal.RequireFromString("0.00001"),
		minNotional: 10.0,
	}

	assert.Equal(t, 123.45, r.RoundPrice(123.4567))
	assert.Equal(t, 0.12345, r.RoundQuantity(0.123456789))

	// Zero steps leave values untouched.
	var free sizingRules
	assert.Equal(t, 123.4567, free.RoundPrice(123.4567))
}

func TestSizingRulesValueToQuantity(t *testing.T) {
	var r sizingRules
	assert.InDelta(t, 0.5, r.ValueToQuantity(50, 100), 1e-12)
	assert.Zero(t, r.ValueToQuantity(50, 0))
	assert.Zero(t, r.ValueToQuantity(50, -1))
}

func TestIsNotionalSufficientEpsilon(t *testing.T) {
	r := sizingRules{minNotional: 5000.0}

	assert.True(t, r.IsNotionalSufficient(5000.0, 1))
	assert.True(t, r.IsNotionalSufficient(5001.0, 1))
	// A hair under the minimum from float rounding still passes.
	assert.True(t, r.IsNotionalSufficient(4999.9999995, 1))
	// A real shortfall does not.
	assert.False(t, r.IsNotionalSufficient(4999.0, 1))
	// Zero quantity never passes regardless of notional.
	assert.False(t, r.IsNotionalSufficient(10000.0, 0))
}

func TestBithumbRounding(t *testing.T) {
	b := &BithumbExchange{}
	assert.Equal(t, 1400.0, b.RoundPrice(1399.7))
	assert.Equal(t, 1399.0, b.RoundPrice(1399.4))
	assert.Equal(t, 0.12345678, b.RoundQuantity(0.123456784))
}

func TestBithumbSideMapping(t *testing.T) {
	assert.Equal(t, "bid", bithumbSide(SideBuy))
	assert.Equal(t, "ask", bithumbSide(SideSell))
}

func TestFormatDecimalSnapsToStep(t *testing.T) {
	tick := decimal.RequireFromString("0.01")
	assert.Equal(t, "123.45", formatDecimal(123.459, tick))

	step := decimal.RequireFromString("0.00001")
	assert.Equal(t, "0.12345", formatDecimal(0.123456, step))

	assert.Equal(t, "7", formatDecimal(7, decimal.Zero))
}
