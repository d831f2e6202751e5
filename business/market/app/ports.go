// Package app contains the market data service and its source ports.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/cryptoquery/business/market/domain"
)

// PairSource supplies the exchange's declared trade pairs. Malformed
// records are dropped by the source; an error means no pairs at all.
type PairSource interface {
	FetchPairs(ctx context.Context) ([]domain.TradePairEdge, error)
}

// PriceSource supplies spot prices of symbols in currency. Symbols missing
// from the result have no known price.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []domain.Symbol, currency string) (map[domain.Symbol]decimal.Decimal, error)
}
