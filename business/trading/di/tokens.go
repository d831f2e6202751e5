// Package di contains dependency injection tokens for the trading context.
package di

import (
	"github.com/fd1az/cryptoquery/business/trading/app"
	"github.com/fd1az/cryptoquery/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QueryService = di.NewToken[*app.QueryService]("trading.QueryService")
)

// Private dependency tokens - internal to trading module
var (
	ChainSearch = di.NewToken[*app.ChainSearch]("trading:chainSearch")
)

// Helper functions for type-safe access
func GetQueryService(c di.ServiceRegistry) *app.QueryService {
	return di.GetToken(c, QueryService)
}

func GetChainSearch(c di.ServiceRegistry) *app.ChainSearch {
	return di.GetToken(c, ChainSearch)
}
