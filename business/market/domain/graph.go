package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/cryptoquery/internal/apperror"
)

// TradePairEdge is an exchange-declared conversion: one unit of Left buys
// Rate units of Right. The reverse direction is a separate edge, if any.
type TradePairEdge struct {
	Left  Symbol
	Right Symbol
	Rate  decimal.Decimal
}

// String renders the edge in exchange notation, e.g. "BTC_ETH".
func (e TradePairEdge) String() string {
	return string(e.Left) + "_" + string(e.Right)
}

// ParsePair parses an exchange descriptor "LEFT_RIGHT" by splitting on the
// first underscore.
func ParsePair(pair string, rate decimal.Decimal) (TradePairEdge, error) {
	left, right, ok := strings.Cut(pair, "_")
	switch {
	case !ok:
		return TradePairEdge{}, malformed(pair, "missing underscore")
	case left == "" || right == "":
		return TradePairEdge{}, malformed(pair, "empty side")
	case left == right:
		return TradePairEdge{}, malformed(pair, "identical sides")
	case rate.IsNegative():
		return TradePairEdge{}, malformed(pair, "negative rate")
	}
	return TradePairEdge{Left: Symbol(left), Right: Symbol(right), Rate: rate}, nil
}

func malformed(pair, reason string) error {
	return apperror.New(apperror.CodeMalformedPair,
		apperror.WithContext(fmt.Sprintf("%q: %s", pair, reason)))
}

// TradeGraph is the set of declared pairs, indexed by symbol. Edges keep
// their load order.
type TradeGraph struct {
	edges    []TradePairEdge
	bySymbol map[Symbol][]int
}

// NewTradeGraph indexes a copy of edges.
func NewTradeGraph(edges []TradePairEdge) *TradeGraph {
	g := &TradeGraph{
		edges:    make([]TradePairEdge, len(edges)),
		bySymbol: make(map[Symbol][]int),
	}
	copy(g.edges, edges)

	for i, e := range g.edges {
		g.bySymbol[e.Left] = append(g.bySymbol[e.Left], i)
		if e.Right != e.Left {
			g.bySymbol[e.Right] = append(g.bySymbol[e.Right], i)
		}
	}
	return g
}

// EmptyGraph returns a graph without edges.
func EmptyGraph() *TradeGraph {
	return NewTradeGraph(nil)
}

// EdgesTouching returns every edge with sym on either side, in load order.
func (g *TradeGraph) EdgesTouching(sym Symbol) []TradePairEdge {
	idx := g.bySymbol[sym]
	out := make([]TradePairEdge, len(idx))
	for i, n := range idx {
		out[i] = g.edges[n]
	}
	return out
}

// Edges returns all edges in load order.
func (g *TradeGraph) Edges() []TradePairEdge {
	out := make([]TradePairEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of edges.
func (g *TradeGraph) Len() int {
	return len(g.edges)
}
