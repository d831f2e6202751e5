package domain

import (
	"slices"

	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
)

var (
	profitableAbove = decimal.NewFromInt(1)
	acceptableAbove = decimal.RequireFromString("0.9")
)

// Classification grades an evaluation by its ratio.
type Classification int

const (
	// Bad is a ratio at or below 0.9.
	Bad Classification = iota
	// Acceptable is a ratio in (0.9, 1].
	Acceptable
	// Profitable is a ratio above 1.
	Profitable
)

func (c Classification) String() string {
	switch c {
	case Profitable:
		return "profitable"
	case Acceptable:
		return "acceptable"
	default:
		return "bad"
	}
}

// Classify grades ratio.
func Classify(ratio decimal.Decimal) Classification {
	switch {
	case ratio.GreaterThan(profitableAbove):
		return Profitable
	case ratio.GreaterThan(acceptableAbove):
		return Acceptable
	default:
		return Bad
	}
}

// PriceLookup resolves a symbol's price, reporting absence separately from zero.
type PriceLookup interface {
	Lookup(sym market.Symbol) (decimal.Decimal, bool)
}

// Evaluation is one pair priced against the catalog for a starting quantity
// of its left symbol. Values are computed once by Evaluate.
type Evaluation struct {
	Edge       market.TradePairEdge
	LeftPrice  decimal.Decimal
	RightPrice decimal.Decimal
	Quantity   decimal.Decimal

	startingValue decimal.Decimal
	finalQuantity decimal.Decimal
	finalValue    decimal.Decimal
	ratio         decimal.Decimal
}

// Evaluate prices edge for qty units of its left symbol. It reports false
// when either price is unknown, the rate is zero or the starting value is
// zero; such edges never reach classification.
func Evaluate(edge market.TradePairEdge, prices PriceLookup, qty decimal.Decimal) (Evaluation, bool) {
	left, ok := prices.Lookup(edge.Left)
	if !ok {
		return Evaluation{}, false
	}
	right, ok := prices.Lookup(edge.Right)
	if !ok {
		return Evaluation{}, false
	}
	return EvaluateAt(edge, left, right, qty)
}

// EvaluateAt is Evaluate with explicit prices.
func EvaluateAt(edge market.TradePairEdge, leftPrice, rightPrice, qty decimal.Decimal) (Evaluation, bool) {
	if edge.Rate.IsZero() {
		return Evaluation{}, false
	}
	startingValue := leftPrice.Mul(qty)
	if startingValue.IsZero() {
		return Evaluation{}, false
	}
	finalQuantity := qty.Mul(edge.Rate)
	finalValue := rightPrice.Mul(finalQuantity)

	return Evaluation{
		Edge:          edge,
		LeftPrice:     leftPrice,
		RightPrice:    rightPrice,
		Quantity:      qty,
		startingValue: startingValue,
		finalQuantity: finalQuantity,
		finalValue:    finalValue,
		ratio:         finalValue.Div(startingValue),
	}, true
}

// StartingValue is leftPrice * quantity.
func (e Evaluation) StartingValue() decimal.Decimal { return e.startingValue }

// FinalQuantity is quantity * rate, in units of the right symbol.
func (e Evaluation) FinalQuantity() decimal.Decimal { return e.finalQuantity }

// FinalValue is rightPrice * finalQuantity.
func (e Evaluation) FinalValue() decimal.Decimal { return e.finalValue }

// Ratio is finalValue / startingValue. It does not depend on quantity.
func (e Evaluation) Ratio() decimal.Decimal { return e.ratio }

// Classification grades the ratio.
func (e Evaluation) Classification() Classification { return Classify(e.ratio) }

func (e Evaluation) IsProfitable() bool { return e.Classification() == Profitable }

func (e Evaluation) IsAcceptable() bool { return e.Classification() == Acceptable }

func (e Evaluation) IsBad() bool { return e.Classification() == Bad }

// SortByRatio sorts evals by ratio, highest first. Equal ratios keep their
// relative order.
func SortByRatio(evals []Evaluation) {
	slices.SortStableFunc(evals, func(a, b Evaluation) int {
		return b.ratio.Cmp(a.ratio)
	})
}
