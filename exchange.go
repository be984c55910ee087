// FILE: exchange.go
// Package main – Exchange adapter contract shared by all venues.
//
// The strategy engine talks to a venue only through the Exchange interface:
//   • FetchQuote / PlaceOrder / CancelOrder / ListOpenOrders – network calls
//   • RoundPrice / RoundQuantity / ValueToQuantity / NotionalValue /
//     MinNotional / IsNotionalSufficient – pure, deterministic sizing helpers
//
// Venue rejections are NOT errors: PlaceOrder returns Success=false with the
// raw payload preserved for diagnostics. Only transport/protocol failures
// travel on the error path.
//
// Concrete implementations live in separate files:
//   • exchange_bithumb.go – Bithumb REST (legacy HMAC API)
//   • exchange_binance.go – Binance spot via go-binance
//   • exchange_paper.go   – in-memory fills for dry runs and tests

package main

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the side of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Quote is one observation of the market, produced once per tick.
type Quote struct {
	Price      float64
	Volume24h  float64
	ObservedAt time.Time
	VenueTime  time.Time // zero when the venue reports no server clock
}

// OrderResult is the normalized outcome of an order submission. Raw keeps
// the venue's response body for *_FAIL trade records.
type OrderResult struct {
	Success bool
	OrderID string
	Raw     string
}

// OpenOrder is one row of the venue's open-order listing.
type OpenOrder struct {
	OrderID string
	Side    OrderSide
}

// Exchange is the full surface the strategy engine needs from a venue.
type Exchange interface {
	Name() string

	FetchQuote(ctx context.Context) (Quote, error)
	PlaceOrder(ctx context.Context, side OrderSide, price, quantity float64) (OrderResult, error)
	CancelOrder(ctx context.Context, orderID string, side OrderSide) (bool, error)
	ListOpenOrders(ctx context.Context) ([]OpenOrder, error)

	RoundPrice(price float64) float64
	RoundQuantity(quantity float64) float64
	ValueToQuantity(value, price float64) float64
	NotionalValue(price, quantity float64) float64
	MinNotional() float64
	IsNotionalSufficient(notional, quantity float64) bool
}

// sizingRules implements the pure helpers for venues whose price tick and
// quantity step are fixed. Venues with price-dependent ticks (Bithumb's KRW
// tick table) override RoundPrice.
type sizingRules struct {
	priceTick   decimal.Decimal // 0 = no snapping
	qtyStep     decimal.Decimal // 0 = no snapping
	minNotional float64
}

func (r sizingRules) RoundPrice(price float64) float64 {
	return snapDown(price, r.priceTick)
}

func (r sizingRules) RoundQuantity(quantity float64) float64 {
	return snapDown(quantity, r.qtyStep)
}

func (r sizingRules) ValueToQuantity(value, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return value / price
}

func (r sizingRules) NotionalValue(price, quantity float64) float64 {
	return price * quantity
}

func (r sizingRules) MinNotional() float64 { return r.minNotional }

// IsNotionalSufficient allows a tiny epsilon below the venue minimum.
// Rounding price and quantity can leave the final notional short by a few
// micro units (4999.9999995 instead of 5000); venues accept those, a strict
// >= would reject them and block every order at the boundary.
func (r sizingRules) IsNotionalSufficient(notional, quantity float64) bool {
	eps := math.Max(1e-6, r.minNotional*1e-6)
	return quantity > 0 && notional+eps >= r.minNotional
}

// snapDown floors v to a multiple of step. step <= 0 leaves v untouched.
func snapDown(v float64, step decimal.Decimal) float64 {
	if step.IsZero() || step.Sign() <= 0 {
		return v
	}
	d := decimal.NewFromFloat(v)
	q := d.Div(step).Floor().Mul(step)
	f, _ := q.Float64()
	return f
}
