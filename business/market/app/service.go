package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/internal/health"
	"github.com/fd1az/cryptoquery/internal/logger"
)

const (
	tracerName = "market"
	meterName  = "market"
)

type serviceMetrics struct {
	refreshes     metric.Int64Counter
	sourceErrors  metric.Int64Counter
	refreshTiming metric.Float64Histogram
}

// MarketService owns the current market snapshot. Refresh fetches pairs
// and prices and swaps in a new snapshot as a whole, so readers see either
// the previous or the next snapshot and never a mix.
type MarketService struct {
	pairs    PairSource
	prices   PriceSource
	universe []domain.Symbol
	currency string
	log      logger.LoggerInterface
	now      func() time.Time

	snapshot atomic.Pointer[domain.Snapshot]

	tracer  trace.Tracer
	metrics *serviceMetrics
}

// NewMarketService creates a service that starts with an empty snapshot.
func NewMarketService(
	pairs PairSource,
	prices PriceSource,
	universe []domain.Symbol,
	currency string,
	log logger.LoggerInterface,
) (*MarketService, error) {
	s := &MarketService{
		pairs:    pairs,
		prices:   prices,
		universe: append([]domain.Symbol(nil), universe...),
		currency: currency,
		log:      log,
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
	}
	s.snapshot.Store(domain.EmptySnapshot(currency))

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return s, nil
}

func (s *MarketService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.refreshes, err = meter.Int64Counter(
		"market_refresh_total",
		metric.WithDescription("Market snapshot refreshes"),
	)
	if err != nil {
		return err
	}

	s.metrics.sourceErrors, err = meter.Int64Counter(
		"market_source_errors_total",
		metric.WithDescription("Failed pair or price fetches"),
	)
	if err != nil {
		return err
	}

	s.metrics.refreshTiming, err = meter.Float64Histogram(
		"market_refresh_duration_ms",
		metric.WithDescription("Time to fetch a full snapshot"),
		metric.WithUnit("ms"),
	)
	return err
}

// Currency returns the reference currency.
func (s *MarketService) Currency() string {
	return s.currency
}

// Universe returns the symbols prices are requested for, in search order.
func (s *MarketService) Universe() []domain.Symbol {
	return append([]domain.Symbol(nil), s.universe...)
}

// Snapshot returns the current snapshot.
func (s *MarketService) Snapshot() *domain.Snapshot {
	return s.snapshot.Load()
}

// Refresh fetches a new snapshot and installs it. A failing source leaves
// its half of the snapshot empty rather than failing the refresh; only a
// cancelled context is returned as an error, in which case the previous
// snapshot stays installed.
func (s *MarketService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market.refresh",
		trace.WithAttributes(
			attribute.String("currency", s.currency),
			attribute.Int("universe", len(s.universe)),
		),
	)
	defer span.End()

	start := s.now()

	edges, err := s.pairs.FetchPairs(ctx)
	if err != nil {
		s.sourceFailed(ctx, span, "pairs", err)
		edges = nil
	}

	prices, err := s.prices.FetchPrices(ctx, s.universe, s.currency)
	if err != nil {
		s.sourceFailed(ctx, span, "prices", err)
		prices = nil
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return s.Snapshot(), err
	}

	snap := domain.NewSnapshot(
		domain.NewPriceCatalog(s.currency, prices),
		domain.NewTradeGraph(edges),
		s.now(),
	)
	s.snapshot.Store(snap)

	elapsed := snap.FetchedAt.Sub(start)
	s.metrics.refreshes.Add(ctx, 1)
	s.metrics.refreshTiming.Record(ctx, float64(elapsed.Microseconds())/1000.0)
	span.SetAttributes(
		attribute.Int("pairs", snap.Graph.Len()),
		attribute.Int("prices", snap.Catalog.Len()),
	)

	s.log.Debug(ctx, "market snapshot refreshed",
		"pairs", snap.Graph.Len(),
		"prices", snap.Catalog.Len(),
		"elapsed", elapsed)

	return snap, nil
}

func (s *MarketService) sourceFailed(ctx context.Context, span trace.Span, source string, err error) {
	span.RecordError(err)
	s.metrics.sourceErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	if ctx.Err() == nil {
		s.log.Warn(ctx, "market data unavailable, continuing with empty "+source, "error", err)
	}
}

// FreshnessCheck reports unhealthy when the snapshot is older than maxAge
// or was never fetched.
func (s *MarketService) FreshnessCheck(maxAge time.Duration) health.CheckFunc {
	return func(ctx context.Context) (bool, string) {
		snap := s.Snapshot()
		if snap.FetchedAt.IsZero() {
			return false, "no snapshot fetched yet"
		}
		age := snap.Age(s.now())
		if age > maxAge {
			return false, fmt.Sprintf("snapshot is %s old", age.Round(time.Millisecond))
		}
		return true, fmt.Sprintf("%d pairs, %d prices", snap.Graph.Len(), snap.Catalog.Len())
	}
}
