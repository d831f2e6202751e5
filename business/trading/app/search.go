package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
)

const (
	tracerName = "trading"
	meterName  = "trading"

	// DefaultMaxDepth bounds chain length when none is configured.
	DefaultMaxDepth = 5
)

var unit = decimal.NewFromInt(1)

type searchMetrics struct {
	runs     metric.Int64Counter
	roots    metric.Int64Histogram
	chains   metric.Int64Histogram
	duration metric.Float64Histogram
}

// ChainSearch builds forests of profitable trade chains.
type ChainSearch struct {
	tracer  trace.Tracer
	metrics *searchMetrics
}

// NewChainSearch creates a ChainSearch.
func NewChainSearch() (*ChainSearch, error) {
	s := &ChainSearch{tracer: otel.Tracer(tracerName)}
	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return s, nil
}

func (s *ChainSearch) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &searchMetrics{}

	s.metrics.runs, err = meter.Int64Counter(
		"search_runs_total",
		metric.WithDescription("Chain search runs"),
	)
	if err != nil {
		return err
	}

	s.metrics.roots, err = meter.Int64Histogram(
		"search_roots",
		metric.WithDescription("Profitable roots found per search"),
	)
	if err != nil {
		return err
	}

	s.metrics.chains, err = meter.Int64Histogram(
		"search_chains",
		metric.WithDescription("Chains found per search"),
	)
	if err != nil {
		return err
	}

	s.metrics.duration, err = meter.Float64Histogram(
		"search_duration_ms",
		metric.WithDescription("Chain search duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return err
}

// BuildForest starts a search from every universe symbol in order. Each
// profitable trade out of a symbol becomes a root that is extended depth
// first through further profitable trades, up to maxDepth trades per chain.
// Unprofitable trades are never extended. maxDepth 0 yields an empty forest.
func (s *ChainSearch) BuildForest(ctx context.Context, snap *market.Snapshot, universe []market.Symbol, maxDepth int) (domain.Forest, error) {
	if maxDepth < 0 {
		return nil, apperror.Validation(apperror.CodeInvalidDepth, fmt.Sprintf("max depth %d", maxDepth))
	}

	ctx, span := s.tracer.Start(ctx, "search.build_forest",
		trace.WithAttributes(
			attribute.Int("universe", len(universe)),
			attribute.Int("max_depth", maxDepth),
			attribute.Int("pairs", snap.Graph.Len()),
		),
	)
	defer span.End()

	start := time.Now()
	forest := domain.Forest{}

	if maxDepth > 0 {
		run := &searchRun{snap: snap, memo: make(map[market.Symbol][]domain.Evaluation)}
		for _, sym := range universe {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				return nil, err
			}
			for _, e := range run.profitableFrom(sym) {
				root := domain.NewRoot(e)
				run.expand(root, maxDepth-1)
				forest = append(forest, root)
			}
		}
	}

	chains := len(forest.Chains())
	span.SetAttributes(
		attribute.Int("roots", len(forest)),
		attribute.Int("chains", chains),
	)
	s.metrics.runs.Add(ctx, 1)
	s.metrics.roots.Record(ctx, int64(len(forest)))
	s.metrics.chains.Record(ctx, int64(chains))
	s.metrics.duration.Record(ctx, float64(time.Since(start).Milliseconds()))

	return forest, nil
}

// searchRun holds state for one forest build. Prices are frozen for its
// lifetime, so outgoing trades per symbol are computed once.
type searchRun struct {
	snap *market.Snapshot
	memo map[market.Symbol][]domain.Evaluation
}

func (r *searchRun) profitableFrom(sym market.Symbol) []domain.Evaluation {
	if trades, ok := r.memo[sym]; ok {
		return trades
	}
	var profitable []domain.Evaluation
	for _, e := range tradesFor(r.snap, sym, unit, domain.DirectionFrom) {
		if e.IsProfitable() {
			profitable = append(profitable, e)
		}
	}
	r.memo[sym] = profitable
	return profitable
}

func (r *searchRun) expand(node *domain.ChainNode, remaining int) {
	if remaining == 0 {
		return
	}
	for _, e := range r.profitableFrom(node.Current.Edge.Right) {
		child := node.Extend(e)
		r.expand(child, remaining-1)
	}
}
