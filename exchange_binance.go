// FILE: exchange_binance.go
// Package main – Binance spot adapter via adshao/go-binance.
//
// Quotes come from the 24hr ticker statistics (last price + base volume).
// Orders are plain limit GTC. Binance API errors that carry an error code
// (insufficient balance, filters, etc.) are venue rejections and surface as
// OrderResult{Success:false}; transport failures stay on the error path.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

type BinanceExchange struct {
	sizingRules

	client *binance.Client
	symbol string
	now    func() time.Time
}

// NewBinanceExchange builds the spot client. Tick and step default to the
// common 0.01 / 0.00001 spot filters; BINANCE_PRICE_TICK and
// BINANCE_QTY_STEP override them for markets with different filters.
func NewBinanceExchange(cfg *Config) *BinanceExchange {
	tick := decimal.NewFromFloat(getEnvFloat("BINANCE_PRICE_TICK", 0.01))
	step := decimal.NewFromFloat(getEnvFloat("BINANCE_QTY_STEP", 0.00001))
	return &BinanceExchange{
		sizingRules: sizingRules{
			priceTick:   tick,
			qtyStep:     step,
			minNotional: getEnvFloat("BINANCE_MIN_NOTIONAL", 10.0),
		},
		client: binance.NewClient(cfg.Binance.APIKey, cfg.Binance.APISecret),
		symbol: cfg.Binance.Symbol,
		now:    time.Now,
	}
}

func (b *BinanceExchange) Name() string { return "binance" }

func (b *BinanceExchange) FetchQuote(ctx context.Context) (Quote, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Symbol(b.symbol).Do(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("binance ticker: %w", err)
	}
	if len(stats) == 0 {
		return Quote{}, fmt.Errorf("binance ticker: no stats for %s", b.symbol)
	}
	price, err := strconv.ParseFloat(stats[0].LastPrice, 64)
	if err != nil || price <= 0 {
		return Quote{}, fmt.Errorf("binance ticker: bad last price %q", stats[0].LastPrice)
	}
	volume, _ := strconv.ParseFloat(stats[0].Volume, 64)
	q := Quote{Price: price, Volume24h: volume, ObservedAt: b.now()}
	if stats[0].CloseTime > 0 {
		q.VenueTime = time.UnixMilli(stats[0].CloseTime)
	}
	return q, nil
}

func (b *BinanceExchange) PlaceOrder(ctx context.Context, side OrderSide, price, quantity float64) (OrderResult, error) {
	bside := binance.SideTypeBuy
	if side == SideSell {
		bside = binance.SideTypeSell
	}
	res, err := b.client.NewCreateOrderService().
		Symbol(b.symbol).
		Side(bside).
		Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Price(formatDecimal(price, b.priceTick)).
		Quantity(formatDecimal(quantity, b.qtyStep)).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return OrderResult{Success: false, Raw: apiErr.Error()}, nil
		}
		return OrderResult{}, fmt.Errorf("binance order: %w", err)
	}
	return OrderResult{
		Success: true,
		OrderID: strconv.FormatInt(res.OrderID, 10),
		Raw:     fmt.Sprintf("status=%s", res.Status),
	}, nil
}

func (b *BinanceExchange) CancelOrder(ctx context.Context, orderID string, side OrderSide) (bool, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		// Locally generated ids never reach the venue.
		return false, nil
	}
	_, err = b.client.NewCancelOrderService().Symbol(b.symbol).OrderID(id).Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			// -2011 UNKNOWN_ORDER: already filled or cancelled.
			return false, nil
		}
		return false, fmt.Errorf("binance cancel: %w", err)
	}
	return true, nil
}

func (b *BinanceExchange) ListOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	rows, err := b.client.NewListOpenOrdersService().Symbol(b.symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance open orders: %w", err)
	}
	orders := make([]OpenOrder, 0, len(rows))
	for _, row := range rows {
		side := SideSell
		if row.Side == binance.SideTypeBuy {
			side = SideBuy
		}
		orders = append(orders, OpenOrder{
			OrderID: strconv.FormatInt(row.OrderID, 10),
			Side:    side,
		})
	}
	return orders, nil
}

// formatDecimal renders v snapped down to step, with the step's precision.
func formatDecimal(v float64, step decimal.Decimal) string {
	d := decimal.NewFromFloat(v)
	if step.Sign() > 0 {
		d = d.Div(step).Floor().Mul(step)
	}
	return d.String()
}
