package domain

import "github.com/shopspring/decimal"

// Holding is a quantity of one symbol owned by the user.
type Holding struct {
	Symbol   Symbol
	Quantity decimal.Decimal
}

// HeldSymbols returns the set of symbols in holdings.
func HeldSymbols(holdings []Holding) SymbolSet {
	set := make(SymbolSet, len(holdings))
	for _, h := range holdings {
		set[h.Symbol] = struct{}{}
	}
	return set
}

// UnitHoldings returns a quantity-one holding per symbol.
func UnitHoldings(syms []Symbol) []Holding {
	out := make([]Holding, len(syms))
	for i, s := range syms {
		out[i] = Holding{Symbol: s, Quantity: decimal.NewFromInt(1)}
	}
	return out
}
