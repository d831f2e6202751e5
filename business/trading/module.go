// Package trading implements the trading bounded context: trade evaluation,
// chain search and the query actions built on them.
package trading

import (
	"context"

	marketDI "github.com/fd1az/cryptoquery/business/market/di"
	"github.com/fd1az/cryptoquery/business/trading/app"
	tradingDI "github.com/fd1az/cryptoquery/business/trading/di"
	"github.com/fd1az/cryptoquery/internal/asset"
	"github.com/fd1az/cryptoquery/internal/di"
	"github.com/fd1az/cryptoquery/internal/logger"
	"github.com/fd1az/cryptoquery/internal/monolith"
)

// Module implements the trading bounded context. It depends on the market
// module's public MarketService.
type Module struct{}

// RegisterServices registers all trading services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, tradingDI.ChainSearch, func(sr di.ServiceRegistry) *app.ChainSearch {
		search, err := app.NewChainSearch()
		if err != nil {
			panic("failed to create chain search: " + err.Error())
		}
		return search
	})

	// Register QueryService (public - used by the command surface)
	di.RegisterToken(c, tradingDI.QueryService, func(sr di.ServiceRegistry) *app.QueryService {
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		registry := sr.Get(monolith.AssetRegistryKey).(*asset.Registry)

		q, err := app.NewQueryService(
			marketDI.GetMarketService(sr),
			tradingDI.GetChainSearch(sr),
			registry,
			log,
		)
		if err != nil {
			panic("failed to create query service: " + err.Error())
		}
		return q
	})

	return nil
}

// Startup initializes the trading module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	tradingDI.GetQueryService(mono.Services())
	mono.Logger().Info(ctx, "trading module started",
		"max_depth", mono.Config().Query.MaxDepth)
	return nil
}
