package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/asset"
	"github.com/fd1az/cryptoquery/internal/logger"
)

func newQueries(t *testing.T, src *fakeMarket) *QueryService {
	t.Helper()
	q, err := NewQueryService(src, newSearch(t), asset.NewRegistry("A", "B", "ANTv1"), logger.NewNop())
	require.NoError(t, err)
	return q
}

func TestMarketTrades_ResolvesSymbol(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot(), universe: syms("A", "B")}
	rec := &recorder{}

	err := newQueries(t, src).MarketTrades(context.Background(), rec, MarketTradesOptions{Symbol: "b"})
	require.NoError(t, err)

	require.Len(t, rec.groups, 1)
	assert.Equal(t, []string{"B_A"}, rights(rec.groups[0][0].Trades))
	assert.Equal(t, 1, src.refreshes)
}

func TestMarketTrades_UniverseProfitableTopOnly(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot(), universe: syms("A", "B")}
	rec := &recorder{}

	err := newQueries(t, src).MarketTrades(context.Background(), rec,
		MarketTradesOptions{TopOnly: true, Profitable: true, Count: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"A_B"}, rights(rec.groups[0][0].Trades))
	assert.Equal(t, 10, rec.opts[0].MaxRows)
}

func TestMarketPrices_Sorting(t *testing.T) {
	src := &fakeMarket{snap: snapshot(map[string]string{"A": "3", "B": "1", "C": "2"})}
	q := newQueries(t, src)

	rec := &recorder{}
	require.NoError(t, q.MarketPrices(context.Background(), rec, MarketPricesOptions{}))
	assert.Equal(t, []market.Symbol{"B", "C", "A"}, priceSymbols(rec.prices))

	rec = &recorder{}
	require.NoError(t, q.MarketPrices(context.Background(), rec, MarketPricesOptions{Reverse: true, Count: 2}))
	assert.Equal(t, []market.Symbol{"A", "C"}, priceSymbols(rec.prices))
}

func priceSymbols(entries []market.PriceEntry) []market.Symbol {
	out := make([]market.Symbol, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}

func TestHoldingValue(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot()}
	rec := &recorder{}

	err := newQueries(t, src).HoldingValue(context.Background(), rec, HoldingValueOptions{
		Holdings: []market.Holding{holding("A", "2"), holding("B", "4")},
	})
	require.NoError(t, err)

	require.Len(t, rec.values, 2)
	assert.True(t, rec.values[1].Value.Equal(d("6")))
	assert.True(t, rec.total.Equal(d("8")), "total %s", rec.total)
}

func TestHoldingValue_UnknownSymbolFails(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot()}
	rec := &recorder{}

	err := newQueries(t, src).HoldingValue(context.Background(), rec, HoldingValueOptions{
		Holdings: []market.Holding{holding("A", "2"), holding("XYZ", "1")},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceNotFound, apperror.GetCode(err))
	assert.Nil(t, rec.values, "nothing is rendered on failure")

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.NotEmpty(t, appErr.RunID)
}

func TestTopTrades_Once(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot()}
	rec := &recorder{}

	err := newQueries(t, src).TopTrades(context.Background(), rec, TopTradesOptions{
		Holdings: []market.Holding{holding("A", "1"), holding("B", "1")},
	})
	require.NoError(t, err)

	require.Len(t, rec.groups, 1)
	assert.Equal(t, TableOptions{MaxRows: 1, NoHeader: true}, rec.opts[0])
	assert.Equal(t, market.Symbol("A"), rec.groups[0][0].Symbol)
}

func TestTopTrades_WatchStopsOnCancel(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{onTrades: func(calls int) {
		if calls == 3 {
			cancel()
		}
	}}

	err := newQueries(t, src).TopTrades(ctx, rec, TopTradesOptions{
		Holdings: []market.Holding{holding("A", "1")},
		Watch:    true,
		Interval: time.Millisecond,
	})
	require.NoError(t, err)
	assert.Len(t, rec.groups, 3)
	assert.Equal(t, 3, src.refreshes)
}

func TestHoldingTrades(t *testing.T) {
	src := &fakeMarket{snap: directionSnapshot()}
	rec := &recorder{}

	err := newQueries(t, src).HoldingTrades(context.Background(), rec, HoldingTradesOptions{
		Holdings:  []market.Holding{holding("A", "1")},
		Direction: domain.DirectionTo,
		Count:     1,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"C_A", "B_A"}, rights(rec.groups[0][0].Trades))
	assert.Equal(t, 1, rec.opts[0].MaxRows)
}

func TestHoldingTrades_Validation(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot()}
	q := newQueries(t, src)

	err := q.HoldingTrades(context.Background(), &recorder{}, HoldingTradesOptions{})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.GetCode(err))
	assert.Equal(t, apperror.ExitUsage, apperror.ExitCodeOf(err))

	err = q.HoldingTrades(context.Background(), &recorder{}, HoldingTradesOptions{
		Holdings: []market.Holding{holding("A", "1")},
		Count:    -1,
	})
	assert.Equal(t, apperror.CodeInvalidInput, apperror.GetCode(err))
	assert.Equal(t, 0, src.refreshes)
}

func TestProfitableTrades_Singles(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot(), universe: syms("A", "B")}
	rec := &recorder{}

	err := newQueries(t, src).ProfitableTrades(context.Background(), rec, ProfitableTradesOptions{
		Holdings: []market.Holding{holding("A", "1")},
		MaxDepth: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"searching for profitable trades (SINGLE)"}, rec.messages)
	require.Len(t, rec.groups, 1)
	assert.Equal(t, []string{"A_B"}, rights(rec.groups[0][0].Trades))
}

func TestProfitableTrades_Chains(t *testing.T) {
	snap := snapshot(map[string]string{"A": "1", "B": "1", "C": "1"},
		pair("A", "B", "1.2"),
		pair("B", "C", "1.1"),
	)
	src := &fakeMarket{snap: snap, universe: syms("A", "B", "C")}
	rec := &recorder{}

	err := newQueries(t, src).ProfitableTrades(context.Background(), rec, ProfitableTradesOptions{
		AllowChains: true,
		MaxDepth:    5,
	})
	require.NoError(t, err)

	require.Len(t, rec.chains, 1)
	assert.Equal(t, "A -> B -> C", rec.chains[0].String())
}

func TestProfitableTrades_NothingFound(t *testing.T) {
	src := &fakeMarket{snap: abSnapshot(), universe: syms("A", "B")}
	rec := &recorder{}

	err := newQueries(t, src).ProfitableTrades(context.Background(), rec, ProfitableTradesOptions{MaxDepth: 0})
	require.NoError(t, err)

	assert.Contains(t, rec.messages, "no profitable trades available at this time.")
	assert.Empty(t, rec.groups)
}
