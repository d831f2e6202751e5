package app

import (
	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
)

// AvailableTrades evaluates every pair touching each holding, filtered by
// direction, sorted by ratio. Ratios are always taken from the pair's left
// side to its right side, also for DirectionTo. Holdings without a valid
// evaluation map to an empty slice.
func AvailableTrades(snap *market.Snapshot, holdings []market.Holding, dir domain.Direction) map[market.Symbol][]domain.Evaluation {
	out := make(map[market.Symbol][]domain.Evaluation, len(holdings))
	for _, h := range holdings {
		out[h.Symbol] = tradesFor(snap, h.Symbol, h.Quantity, dir)
	}
	return out
}

// GroupTrades orders trades by holdings for rendering.
func GroupTrades(trades map[market.Symbol][]domain.Evaluation, holdings []market.Holding) []TradeGroup {
	groups := make([]TradeGroup, 0, len(holdings))
	for _, h := range holdings {
		groups = append(groups, TradeGroup{Symbol: h.Symbol, Trades: trades[h.Symbol]})
	}
	return groups
}

func tradesFor(snap *market.Snapshot, sym market.Symbol, qty decimal.Decimal, dir domain.Direction) []domain.Evaluation {
	trades := []domain.Evaluation{}
	for _, edge := range snap.Graph.EdgesTouching(sym) {
		if !matchesDirection(edge, sym, dir) {
			continue
		}
		if e, ok := domain.Evaluate(edge, snap.Catalog, qty); ok {
			trades = append(trades, e)
		}
	}
	domain.SortByRatio(trades)
	return trades
}

// matchesDirection applies no filter for DirectionBoth or the zero direction.
func matchesDirection(edge market.TradePairEdge, sym market.Symbol, dir domain.Direction) bool {
	if dir == domain.DirectionBoth {
		return true
	}
	if dir.Has(domain.DirectionFrom) && edge.Left != sym {
		return false
	}
	if dir.Has(domain.DirectionTo) && edge.Right != sym {
		return false
	}
	return true
}
