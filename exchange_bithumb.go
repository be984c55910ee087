// FILE: exchange_bithumb.go
// Package main – Bithumb spot adapter (v1.2.0 HMAC API).
//
// Public ticker: GET /public/ticker/{ORDER}_{PAYMENT}
// Private calls sign "endpoint\x00query\x00nonce" with HMAC-SHA512 and send
// Api-Key / Api-Nonce / Api-Sign headers over form-encoded bodies:
//   POST /trade/place   – limit order (type bid|ask, price in whole KRW)
//   POST /trade/cancel  – cancel by order_id + side
//   POST /info/orders   – open-order listing
// A "0000" status marks success; any other status is a venue rejection and
// comes back as OrderResult{Success:false} with the body preserved.

package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type BithumbExchange struct {
	sizingRules

	baseURL   string
	apiKey    string
	apiSecret string

	symbolTicker    string // e.g. "USDT_KRW"
	orderCurrency   string
	paymentCurrency string

	hc  *http.Client
	now func() time.Time
}

func NewBithumbExchange(cfg *Config) *BithumbExchange {
	return &BithumbExchange{
		sizingRules:     sizingRules{minNotional: 5000.0},
		baseURL:         strings.TrimRight(cfg.Bithumb.BaseURL, "/"),
		apiKey:          cfg.Bithumb.APIKey,
		apiSecret:       cfg.Bithumb.APISecret,
		symbolTicker:    cfg.SymbolTicker,
		orderCurrency:   cfg.OrderCurrency,
		paymentCurrency: cfg.PaymentCurrency,
		hc:              &http.Client{Timeout: 7 * time.Second},
		now:             time.Now,
	}
}

func (b *BithumbExchange) Name() string { return "bithumb" }

// RoundPrice rounds to whole KRW. The v1.2.0 order endpoint only accepts
// integer prices on KRW markets.
func (b *BithumbExchange) RoundPrice(price float64) float64 {
	return math.Round(price)
}

// RoundQuantity truncates to the 8 decimal places the order endpoint allows.
func (b *BithumbExchange) RoundQuantity(quantity float64) float64 {
	return math.Round(quantity*1e8) / 1e8
}

// ---------- Public ----------

func (b *BithumbExchange) FetchQuote(ctx context.Context) (Quote, error) {
	u := fmt.Sprintf("%s/public/ticker/%s", b.baseURL, url.PathEscape(b.symbolTicker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}
	res, err := b.hc.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return Quote{}, fmt.Errorf("bithumb ticker %d: %s", res.StatusCode, string(body))
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			ClosingPrice   string `json:"closing_price"`
			UnitsTraded24H string `json:"units_traded_24H"`
			Date           string `json:"date"` // venue clock, unix ms
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("bithumb ticker decode: %w", err)
	}
	if payload.Status != "0000" {
		return Quote{}, fmt.Errorf("bithumb ticker status %s", payload.Status)
	}
	price, err := strconv.ParseFloat(payload.Data.ClosingPrice, 64)
	if err != nil || price <= 0 {
		return Quote{}, fmt.Errorf("bithumb ticker: bad closing_price %q", payload.Data.ClosingPrice)
	}
	volume, _ := strconv.ParseFloat(payload.Data.UnitsTraded24H, 64)

	q := Quote{Price: price, Volume24h: volume, ObservedAt: b.now()}
	if ms, err := strconv.ParseInt(payload.Data.Date, 10, 64); err == nil && ms > 0 {
		q.VenueTime = time.UnixMilli(ms)
	}
	return q, nil
}

// ---------- Private ----------

func (b *BithumbExchange) PlaceOrder(ctx context.Context, side OrderSide, price, quantity float64) (OrderResult, error) {
	params := url.Values{}
	params.Set("order_currency", b.orderCurrency)
	params.Set("payment_currency", b.paymentCurrency)
	params.Set("units", fmt.Sprintf("%.8f", b.RoundQuantity(quantity)))
	params.Set("price", strconv.Itoa(int(math.Round(b.RoundPrice(price)))))
	params.Set("type", bithumbSide(side))

	body, err := b.signedPost(ctx, "/trade/place", params)
	if err != nil {
		return OrderResult{}, err
	}
	var payload struct {
		Status  string `json:"status"`
		OrderID string `json:"order_id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return OrderResult{}, fmt.Errorf("bithumb place decode: %w", err)
	}
	return OrderResult{
		Success: payload.Status == "0000",
		OrderID: payload.OrderID,
		Raw:     string(body),
	}, nil
}

func (b *BithumbExchange) CancelOrder(ctx context.Context, orderID string, side OrderSide) (bool, error) {
	params := url.Values{}
	params.Set("order_currency", b.orderCurrency)
	params.Set("payment_currency", b.paymentCurrency)
	params.Set("order_id", orderID)
	params.Set("type", bithumbSide(side))

	body, err := b.signedPost(ctx, "/trade/cancel", params)
	if err != nil {
		return false, err
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, fmt.Errorf("bithumb cancel decode: %w", err)
	}
	return payload.Status == "0000", nil
}

func (b *BithumbExchange) ListOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	params := url.Values{}
	params.Set("order_currency", b.orderCurrency)
	params.Set("payment_currency", b.paymentCurrency)

	body, err := b.signedPost(ctx, "/info/orders", params)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Status string `json:"status"`
		Data   []struct {
			OrderID string `json:"order_id"`
			Type    string `json:"type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("bithumb orders decode: %w", err)
	}
	// "5600" means no open orders; treat any non-success as an empty book
	// rather than failing the tick.
	if payload.Status != "0000" {
		return nil, nil
	}
	orders := make([]OpenOrder, 0, len(payload.Data))
	for _, row := range payload.Data {
		side := SideSell
		if strings.EqualFold(row.Type, "bid") {
			side = SideBuy
		}
		orders = append(orders, OpenOrder{OrderID: row.OrderID, Side: side})
	}
	return orders, nil
}

// signedPost signs and sends one v1.2.0 private call, returning the raw
// response body.
func (b *BithumbExchange) signedPost(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	// Signature covers the query in insertion order; url.Values.Encode sorts
	// keys, which Bithumb accepts as long as the body matches the signature.
	query := params.Encode()
	nonce := strconv.FormatInt(b.now().UnixMilli(), 10)

	mac := hmac.New(sha512.New, []byte(b.apiSecret))
	fmt.Fprintf(mac, "%s\x00%s\x00%s", endpoint, query, nonce)
	sign := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+endpoint, strings.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Key", b.apiKey)
	req.Header.Set("Api-Nonce", nonce)
	req.Header.Set("Api-Sign", sign)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := b.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("bithumb %s %d: %s", endpoint, res.StatusCode, string(body))
	}
	return body, nil
}

func bithumbSide(side OrderSide) string {
	if side == SideBuy {
		return "bid"
	}
	return "ask"
}
