package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	inMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	outMint = "So11111111111111111111111111111111111111112"
	taker   = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

const quoteBody = `{
	"requestId": "req-1",
	"inputMint": "` + inMint + `",
	"outputMint": "` + outMint + `",
	"inAmount": "10000000",
	"outAmount": "1150000000",
	"inputDecimals": 6,
	"outputDecimals": 9,
	"inUsdValue": "200.00",
	"outUsdValue": "198.50",
	"networkFeeLamports": 5000
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(server.URL, time.Second, 3, zap.NewNop())
	c.retryDelay = time.Millisecond
	return c
}

func TestClientQuote(t *testing.T) {
	var gotQuery atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(quoteBody))
	})

	raw, err := c.Quote(context.Background(), Request{
		InputMint:    inMint,
		OutputMint:   outMint,
		AmountNative: 10_000_000,
		Taker:        taker,
	})
	require.NoError(t, err)
	assert.Equal(t, "req-1", raw.RequestID)
	assert.Equal(t, "10000000", raw.InAmount)

	query := gotQuery.Load().(string)
	assert.Contains(t, query, "inputMint="+inMint)
	assert.Contains(t, query, "amount=10000000")
	assert.Contains(t, query, "taker="+taker)
}

func TestClientQuoteInlineProviderError(t *testing.T) {
	// Providers reject unroutable pairs with a 4xx and an inline error
	// payload. The client must hand that back as a valid quote, once.
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode": "COULD_NOT_FIND_ANY_ROUTE", "errorMessage": "no route"}`))
	})

	raw, err := c.Quote(context.Background(), Request{InputMint: inMint, OutputMint: outMint, AmountNative: 1})
	require.NoError(t, err)
	assert.Equal(t, "COULD_NOT_FIND_ANY_ROUTE", raw.ErrorCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientQuoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(quoteBody))
	})

	raw, err := c.Quote(context.Background(), Request{InputMint: inMint, OutputMint: outMint, AmountNative: 1})
	require.NoError(t, err)
	assert.Equal(t, "req-1", raw.RequestID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientQuoteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Quote(context.Background(), Request{InputMint: inMint, OutputMint: outMint, AmountNative: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "should stop after max tries")
}

func TestClientQuotePermanentOnPlainClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})

	_, err := c.Quote(context.Background(), Request{InputMint: inMint, OutputMint: outMint, AmountNative: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Equal(t, int32(1), calls.Load(), "4xx without an error payload must not be retried")
}

func TestClientQuoteRejectsIncompleteRequest(t *testing.T) {
	c := NewClient("http://localhost:0", time.Second, 1, zap.NewNop())

	_, err := c.Quote(context.Background(), Request{OutputMint: outMint, AmountNative: 1})
	assert.Error(t, err)

	_, err = c.Quote(context.Background(), Request{InputMint: inMint, OutputMint: outMint})
	assert.Error(t, err)
}

func TestClientQuoteHonorsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Quote(ctx, Request{InputMint: inMint, OutputMint: outMint, AmountNative: 1})
	require.Error(t, err)
}
