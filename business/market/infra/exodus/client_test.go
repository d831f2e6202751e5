package exodus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.PricingURL = srv.URL
	cfg.ExchangeURL = srv.URL
	c, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestFetchPairs_DropsMalformedRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, pairsEndpoint, r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","data":[
			{"pair":"BTC_ETH","rate":15.5},
			{"pair":"BTCETH","rate":1},
			{"pair":"ETH_BTC","rate":"0.06"},
			{"pair":"ETH_ETH","rate":1},
			{"pair":"LTC_BTC","rate":-1},
			{"pair":7,"rate":1},
			{"pair":"ETH_USDT_X","rate":2.5e3}
		]}`)
	})

	edges, err := c.FetchPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, edges, 2)

	assert.Equal(t, domain.Symbol("BTC"), edges[0].Left)
	assert.Equal(t, domain.Symbol("ETH"), edges[0].Right)
	assert.True(t, edges[0].Rate.Equal(decimal.RequireFromString("15.5")))

	assert.Equal(t, domain.Symbol("ETH"), edges[1].Left)
	assert.Equal(t, domain.Symbol("USDT_X"), edges[1].Right)
	assert.True(t, edges[1].Rate.Equal(decimal.NewFromInt(2500)))
}

func TestFetchPairs_StatusNotSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"error","data":[]}`)
	})

	_, err := c.FetchPairs(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeExchangeAPIError, apperror.GetCode(err))
}

func TestFetchPairs_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := c.FetchPairs(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeExchangeUnavailable, apperror.GetCode(err))
	assert.Equal(t, apperror.ExitUnavailable, apperror.ExitCodeOf(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestFetchPrices_RequestAndParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, currentPriceEndpoint, r.URL.Path)

		var req PriceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"BTC", "ETH", "XYZ", "BAD", "NEG", "ZERO"}, req.Assets.From)
		assert.Equal(t, []string{"GBP"}, req.Assets.To)

		_, _ = io.WriteString(w, `{
			"BTC":{"GBP":25000.5,"USD":30000},
			"ETH":{"GBP":1500},
			"XYZ":{"USD":1},
			"BAD":{"GBP":"n/a"},
			"NEG":{"GBP":-3},
			"ZERO":{"GBP":0}
		}`)
	})

	syms := domain.SymbolsOf([]string{"BTC", "ETH", "XYZ", "BAD", "NEG", "ZERO"})
	prices, err := c.FetchPrices(context.Background(), syms, "GBP")
	require.NoError(t, err)

	require.Len(t, prices, 3)
	assert.True(t, prices["BTC"].Equal(decimal.RequireFromString("25000.5")))
	assert.True(t, prices["ETH"].Equal(decimal.NewFromInt(1500)))
	assert.True(t, prices["ZERO"].IsZero())
	assert.NotContains(t, prices, domain.Symbol("XYZ"))
}

func TestFetchPrices_NoSymbolsSkipsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	prices, err := c.FetchPrices(context.Background(), nil, "GBP")
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.False(t, called)
}

func TestFetchPrices_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPrices(ctx, domain.SymbolsOf([]string{"BTC"}), "GBP")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for range 5 {
		_, err := c.FetchPairs(context.Background())
		require.Error(t, err)
	}
	_, err := c.FetchPairs(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCircuitOpen, apperror.GetCode(err))
	assert.Equal(t, 5, hits)
}

func TestRawValue_Decimal(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1.25", "1.25", true},
		{"-0.5", "-0.5", true},
		{"1e-3", "0.001", true},
		{`"1.25"`, "", false},
		{"null", "", false},
		{"{}", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := RawValue(tt.raw).Decimal()
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), got.String())
		})
	}
}
