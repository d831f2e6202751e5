// Package domain contains the market data model: symbols, the price catalog
// and the graph of tradeable pairs.
package domain

// Symbol identifies a currency or asset, e.g. "BTC".
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

// SymbolsOf converts plain strings to symbols, keeping order.
func SymbolsOf(ss []string) []Symbol {
	out := make([]Symbol, len(ss))
	for i, s := range ss {
		out[i] = Symbol(s)
	}
	return out
}

// SymbolSet is a membership set of symbols.
type SymbolSet map[Symbol]struct{}

// NewSymbolSet builds a set from syms.
func NewSymbolSet(syms ...Symbol) SymbolSet {
	set := make(SymbolSet, len(syms))
	for _, s := range syms {
		set[s] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s SymbolSet) Has(sym Symbol) bool {
	_, ok := s[sym]
	return ok
}
