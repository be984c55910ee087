// FILE: exchange_bithumb_test.go
package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBithumbTestClient(t *testing.T, handler http.Handler) *BithumbExchange {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.Bithumb.BaseURL = srv.URL
	cfg.Bithumb.APIKey = "test-key"
	cfg.Bithumb.APISecret = "test-secret"
	return NewBithumbExchange(&cfg)
}

func TestBithumbFetchQuote(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public/ticker/USDT_KRW", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"0000","data":{"closing_price":"1402.5","units_traded_24H":"3150.7","date":"1718000000000"}}`))
	}))

	q, err := ex.FetchQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1402.5, q.Price)
	assert.Equal(t, 3150.7, q.Volume24h)
	assert.False(t, q.VenueTime.IsZero())
}

func TestBithumbFetchQuoteBadStatus(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"5100","data":{}}`))
	}))

	_, err := ex.FetchQuote(context.Background())
	assert.Error(t, err)
}

func TestBithumbPlaceOrderSignsRequest(t *testing.T) {
	var gotKey, gotSign, gotNonce string
	var gotType, gotPrice, gotUnits string
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trade/place", r.URL.Path)
		gotKey = r.Header.Get("Api-Key")
		gotSign = r.Header.Get("Api-Sign")
		gotNonce = r.Header.Get("Api-Nonce")
		require.NoError(t, r.ParseForm())
		gotType = r.PostForm.Get("type")
		gotPrice = r.PostForm.Get("price")
		gotUnits = r.PostForm.Get("units")
		_, _ = w.Write([]byte(`{"status":"0000","order_id":"C0101000007408440032"}`))
	}))

	res, err := ex.PlaceOrder(context.Background(), SideBuy, 1402.4, 3.56789012345)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "C0101000007408440032", res.OrderID)

	assert.Equal(t, "test-key", gotKey)
	assert.NotEmpty(t, gotSign)
	assert.NotEmpty(t, gotNonce)
	assert.Equal(t, "bid", gotType)
	assert.Equal(t, "1402", gotPrice)
	assert.Equal(t, "3.56789012", gotUnits)
}

func TestBithumbPlaceOrderVenueRejection(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"5600","message":"insufficient balance"}`))
	}))

	res, err := ex.PlaceOrder(context.Background(), SideSell, 1402, 3.5)
	require.NoError(t, err) // rejection is a value, not an error
	assert.False(t, res.Success)
	assert.Contains(t, res.Raw, "insufficient balance")
}

func TestBithumbListOpenOrders(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/info/orders", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"0000","data":[{"order_id":"111","type":"bid"},{"order_id":"222","type":"ask"}]}`))
	}))

	orders, err := ex.ListOpenOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, OpenOrder{OrderID: "111", Side: SideBuy}, orders[0])
	assert.Equal(t, OpenOrder{OrderID: "222", Side: SideSell}, orders[1])
}

func TestBithumbListOpenOrdersEmptyBook(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"5600","message":"no orders"}`))
	}))

	orders, err := ex.ListOpenOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBithumbCancelOrder(t *testing.T) {
	ex := newBithumbTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trade/cancel", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "111", r.PostForm.Get("order_id"))
		assert.Equal(t, "ask", r.PostForm.Get("type"))
		_, _ = w.Write([]byte(`{"status":"0000"}`))
	}))

	ok, err := ex.CancelOrder(context.Background(), "111", SideSell)
	require.NoError(t, err)
	assert.True(t, ok)
}
