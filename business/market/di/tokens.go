// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/cryptoquery/business/market/app"
	"github.com/fd1az/cryptoquery/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.MarketService]("market.MarketService")
)

// Private dependency tokens - internal to market module
var (
	PairSource  = di.NewToken[app.PairSource]("market:pairSource")
	PriceSource = di.NewToken[app.PriceSource]("market:priceSource")
)

// Helper functions for type-safe access
func GetMarketService(c di.ServiceRegistry) *app.MarketService {
	return di.GetToken(c, MarketService)
}

func GetPairSource(c di.ServiceRegistry) app.PairSource {
	return di.GetToken(c, PairSource)
}

func GetPriceSource(c di.ServiceRegistry) app.PriceSource {
	return di.GetToken(c, PriceSource)
}
