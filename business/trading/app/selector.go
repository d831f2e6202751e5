package app

import (
	"slices"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
)

// SelectSingles returns the single-trade chains of forest that pass the
// holding filters, best ratio first, truncated to count (0 keeps all).
func SelectSingles(forest domain.Forest, held market.SymbolSet, dir domain.Direction, count int) []domain.Evaluation {
	var out []domain.Evaluation
	for _, chain := range forest.Chains() {
		if len(chain) != 1 || !heldEnds(chain, held, dir) {
			continue
		}
		out = append(out, chain.First().Current)
	}
	domain.SortByRatio(out)
	return truncate(out, count)
}

// SelectChains returns the compounding chains of forest (two or more trades)
// that pass the holding filters, best compounded ratio first.
func SelectChains(forest domain.Forest, held market.SymbolSet, dir domain.Direction) []domain.Chain {
	var out []domain.Chain
	for _, chain := range forest.Chains() {
		if len(chain) < 2 || !heldEnds(chain, held, dir) {
			continue
		}
		out = append(out, chain)
	}
	domain.SortChainsByRatio(out)
	return out
}

// SelectMarketTrades collates trades of symbols in order. With topOnly it
// takes the best trade per symbol; with profitable it keeps profitable
// trades only. The result is sorted by ratio.
func SelectMarketTrades(trades map[market.Symbol][]domain.Evaluation, order []market.Symbol, topOnly, profitable bool) []domain.Evaluation {
	var out []domain.Evaluation
	for _, sym := range order {
		list := trades[sym]
		if len(list) == 0 {
			continue
		}
		if topOnly {
			list = list[:1]
		}
		for _, e := range list {
			if profitable && !e.IsProfitable() {
				continue
			}
			out = append(out, e)
		}
	}
	domain.SortByRatio(out)
	return out
}

// heldEnds checks the opening symbol when the from flag is set and the
// closing symbol when the to flag is set.
func heldEnds(chain domain.Chain, held market.SymbolSet, dir domain.Direction) bool {
	if dir.Has(domain.DirectionFrom) && !held.Has(chain.First().Current.Edge.Left) {
		return false
	}
	if dir.Has(domain.DirectionTo) && !held.Has(chain.Last().Current.Edge.Right) {
		return false
	}
	return true
}

func truncate[T any](s []T, count int) []T {
	if count > 0 && len(s) > count {
		return slices.Clip(s[:count])
	}
	return s
}
