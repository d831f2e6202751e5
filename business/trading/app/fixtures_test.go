package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pair(left, right, rate string) market.TradePairEdge {
	return market.TradePairEdge{Left: market.Symbol(left), Right: market.Symbol(right), Rate: d(rate)}
}

func snapshot(prices map[string]string, pairs ...market.TradePairEdge) *market.Snapshot {
	m := make(map[market.Symbol]decimal.Decimal, len(prices))
	for sym, p := range prices {
		m[market.Symbol(sym)] = d(p)
	}
	return market.NewSnapshot(
		market.NewPriceCatalog("GBP", m),
		market.NewTradeGraph(pairs),
		time.Now(),
	)
}

func syms(ss ...string) []market.Symbol {
	return market.SymbolsOf(ss)
}

func holding(sym, qty string) market.Holding {
	return market.Holding{Symbol: market.Symbol(sym), Quantity: d(qty)}
}

// abSnapshot is A->B at rate 2 and B->A at rate 0.4 with A=1, B=1.5.
func abSnapshot() *market.Snapshot {
	return snapshot(map[string]string{"A": "1", "B": "1.5"},
		pair("A", "B", "2"),
		pair("B", "A", "0.4"),
	)
}

type fakeMarket struct {
	snap      *market.Snapshot
	universe  []market.Symbol
	refreshes int
}

func (f *fakeMarket) Refresh(ctx context.Context) (*market.Snapshot, error) {
	f.refreshes++
	if err := ctx.Err(); err != nil {
		return f.snap, err
	}
	return f.snap, nil
}

func (f *fakeMarket) Universe() []market.Symbol { return f.universe }

func (f *fakeMarket) Currency() string { return "GBP" }

type recorder struct {
	groups   [][]TradeGroup
	opts     []TableOptions
	chains   []domain.Chain
	prices   []market.PriceEntry
	values   []HoldingValue
	total    decimal.Decimal
	messages []string

	onTrades func(calls int)
}

func (r *recorder) Trades(_ context.Context, groups []TradeGroup, opts TableOptions) {
	r.groups = append(r.groups, groups)
	r.opts = append(r.opts, opts)
	if r.onTrades != nil {
		r.onTrades(len(r.groups))
	}
}

func (r *recorder) Chain(_ context.Context, chain domain.Chain, _ TableOptions) {
	r.chains = append(r.chains, chain)
}

func (r *recorder) Prices(_ context.Context, _ string, entries []market.PriceEntry) {
	r.prices = entries
}

func (r *recorder) Holdings(_ context.Context, _ string, values []HoldingValue, total decimal.Decimal) {
	r.values = values
	r.total = total
}

func (r *recorder) Message(_ context.Context, msg string) {
	r.messages = append(r.messages, msg)
}

func rights(evals []domain.Evaluation) []string {
	out := make([]string, len(evals))
	for i, e := range evals {
		out[i] = e.Edge.String()
	}
	return out
}
