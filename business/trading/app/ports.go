// Package app contains the trade search engine, the query actions and the
// port definitions for the trading context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
)

// MarketSource supplies fresh market snapshots.
type MarketSource interface {
	Refresh(ctx context.Context) (*market.Snapshot, error)
	Universe() []market.Symbol
	Currency() string
}

// SymbolResolver maps user input to a known symbol spelling.
type SymbolResolver interface {
	Resolve(input string) (string, bool)
}

// TradeGroup is the evaluations found for one symbol. Symbol is empty for
// a collated list.
type TradeGroup struct {
	Symbol market.Symbol
	Trades []domain.Evaluation
}

// TableOptions controls how a trade table is rendered.
type TableOptions struct {
	// MaxRows limits rows per group; zero shows all.
	MaxRows  int
	NoHeader bool
}

// HoldingValue is one holding priced in the reference currency.
type HoldingValue struct {
	Symbol   market.Symbol
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Value    decimal.Decimal
}

// Reporter renders query results. Implementations skip empty groups.
type Reporter interface {
	// Trades renders one table per non-empty group.
	Trades(ctx context.Context, groups []TradeGroup, opts TableOptions)

	// Chain renders one compounding chain with its overall ratio.
	Chain(ctx context.Context, chain domain.Chain, opts TableOptions)

	// Prices renders symbol prices in the given order.
	Prices(ctx context.Context, currency string, entries []market.PriceEntry)

	// Holdings renders per-holding values and their total.
	Holdings(ctx context.Context, currency string, values []HoldingValue, total decimal.Decimal)

	// Message renders a status line.
	Message(ctx context.Context, msg string)
}

// SnapshotObserver is implemented by reporters that display the snapshot
// behind each result, such as the watch TUI.
type SnapshotObserver interface {
	Snapshot(ctx context.Context, snap *market.Snapshot)
}
