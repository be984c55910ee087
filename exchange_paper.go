// FILE: exchange_paper.go
// Package main – In-memory paper venue for dry runs.
//
// Simulates a market with a gentle random walk around a seed price and fills
// every order instantly. Orders never appear in the open-order listing, so
// the cancellation path stays quiet during dry runs. Sizing mirrors the
// Bithumb KRW conventions so a dry run exercises the same rounding the live
// venue would.

package main

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PaperExchange keeps a single mutable price used to simulate fills.
type PaperExchange struct {
	sizingRules

	mu        sync.Mutex
	price     float64
	volume24h float64
	rng       *rand.Rand
	now       func() time.Time
}

// NewPaperExchange seeds the simulated market. PAPER_START_PRICE and
// PAPER_VOLUME_24H override the defaults.
func NewPaperExchange() *PaperExchange {
	return &PaperExchange{
		sizingRules: sizingRules{minNotional: 5000.0},
		price:       getEnvFloat("PAPER_START_PRICE", 1400.0),
		volume24h:   getEnvFloat("PAPER_VOLUME_24H", 2000.0),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

func (p *PaperExchange) Name() string { return "paper" }

// RoundPrice mirrors the KRW whole-unit convention.
func (p *PaperExchange) RoundPrice(price float64) float64 { return math.Round(price) }

func (p *PaperExchange) RoundQuantity(quantity float64) float64 {
	return math.Round(quantity*1e8) / 1e8
}

// FetchQuote advances the random walk by up to ±0.2% and returns the new
// price.
func (p *PaperExchange) FetchQuote(ctx context.Context) (Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	drift := 1 + (p.rng.Float64()-0.5)*0.004
	p.price *= drift
	return Quote{Price: p.price, Volume24h: p.volume24h, ObservedAt: p.now()}, nil
}

// SetPrice pins the simulated price; the next FetchQuote walks from here.
func (p *PaperExchange) SetPrice(price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.price = price
}

func (p *PaperExchange) PlaceOrder(ctx context.Context, side OrderSide, price, quantity float64) (OrderResult, error) {
	return OrderResult{
		Success: true,
		OrderID: "paper-" + uuid.New().String(),
		Raw:     "simulated fill",
	}, nil
}

func (p *PaperExchange) CancelOrder(ctx context.Context, orderID string, side OrderSide) (bool, error) {
	return true, nil
}

func (p *PaperExchange) ListOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	return nil, nil
}
