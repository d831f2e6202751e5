// Package market implements the market data bounded context: trade pairs
// and fiat prices fetched from the exchange.
package market

import (
	"context"

	"github.com/fd1az/cryptoquery/business/market/app"
	marketDI "github.com/fd1az/cryptoquery/business/market/di"
	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/market/infra/exodus"
	"github.com/fd1az/cryptoquery/internal/asset"
	"github.com/fd1az/cryptoquery/internal/config"
	"github.com/fd1az/cryptoquery/internal/di"
	"github.com/fd1az/cryptoquery/internal/logger"
	"github.com/fd1az/cryptoquery/internal/monolith"
)

const exodusClientKey = "market:exodusClient"

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// One Exodus client serves both sources so they share a breaker and limiter.
	c.RegisterFactory(exodusClientKey, func(sr di.ServiceRegistry) any {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		client, err := exodus.NewClient(exodus.Config{
			PricingURL:        cfg.Exodus.PricingURL,
			ExchangeURL:       cfg.Exodus.ExchangeURL,
			RequestTimeout:    cfg.Exodus.RequestTimeout,
			RequestsPerMinute: cfg.Exodus.RequestsPerMinute,
			CircuitBreaker:    cfg.Exodus.CircuitBreaker,
		}, log)
		if err != nil {
			panic("failed to create exodus client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, marketDI.PairSource, func(sr di.ServiceRegistry) app.PairSource {
		return sr.Get(exodusClientKey).(*exodus.Client)
	})

	di.RegisterToken(c, marketDI.PriceSource, func(sr di.ServiceRegistry) app.PriceSource {
		return sr.Get(exodusClientKey).(*exodus.Client)
	})

	// Register MarketService (public - exposed to other modules)
	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.MarketService {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		registry := sr.Get(monolith.AssetRegistryKey).(*asset.Registry)

		svc, err := app.NewMarketService(
			marketDI.GetPairSource(sr),
			marketDI.GetPriceSource(sr),
			domain.SymbolsOf(registry.Symbols()),
			cfg.Query.Currency,
			log,
		)
		if err != nil {
			panic("failed to create market service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the market module. Snapshots are fetched on demand.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := marketDI.GetMarketService(mono.Services())
	mono.Logger().Info(ctx, "market module started",
		"universe", len(svc.Universe()),
		"currency", svc.Currency())
	return nil
}
