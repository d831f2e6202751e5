package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/logger"
)

// DefaultWatchInterval is the pause between watch iterations.
const DefaultWatchInterval = 2 * time.Second

// MarketTradesOptions lists trades out of one symbol or the whole universe.
type MarketTradesOptions struct {
	Symbol     string `validate:"omitempty,max=32"`
	Count      int    `validate:"gte=0"`
	TopOnly    bool
	Profitable bool
}

// MarketPricesOptions lists catalog prices, cheapest first unless Reverse.
type MarketPricesOptions struct {
	Count   int `validate:"gte=0"`
	Reverse bool
}

// HoldingValueOptions values each holding in the reference currency.
type HoldingValueOptions struct {
	Holdings []market.Holding `validate:"required,min=1"`
}

// TopTradesOptions shows the best trade out of each holding.
type TopTradesOptions struct {
	Holdings []market.Holding `validate:"required,min=1"`
	Watch    bool
	Interval time.Duration `validate:"gte=0"`
}

// HoldingTradesOptions lists trades touching each holding.
type HoldingTradesOptions struct {
	Holdings  []market.Holding `validate:"required,min=1"`
	Count     int              `validate:"gte=0"`
	Direction domain.Direction `validate:"lte=3"`
}

// ProfitableTradesOptions searches the universe for profitable trades or,
// with AllowChains, compounding chains, filtered by the held symbols.
type ProfitableTradesOptions struct {
	Holdings    []market.Holding
	Count       int              `validate:"gte=0"`
	Direction   domain.Direction `validate:"lte=3"`
	AllowChains bool
	MaxDepth    int `validate:"gte=0,lte=10"`
}

type queryMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// QueryService runs the user-facing query actions against fresh snapshots.
type QueryService struct {
	market   MarketSource
	search   *ChainSearch
	resolver SymbolResolver
	log      logger.LoggerInterface
	validate *validator.Validate

	tracer  trace.Tracer
	metrics *queryMetrics
}

// NewQueryService creates a QueryService.
func NewQueryService(src MarketSource, search *ChainSearch, resolver SymbolResolver, log logger.LoggerInterface) (*QueryService, error) {
	q := &QueryService{
		market:   src,
		search:   search,
		resolver: resolver,
		log:      log,
		validate: validator.New(),
		tracer:   otel.Tracer(tracerName),
	}
	if err := q.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return q, nil
}

func (q *QueryService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	q.metrics = &queryMetrics{}

	q.metrics.runs, err = meter.Int64Counter(
		"query_runs_total",
		metric.WithDescription("Query actions run, by action and outcome"),
	)
	if err != nil {
		return err
	}

	q.metrics.duration, err = meter.Float64Histogram(
		"query_duration_ms",
		metric.WithDescription("Query action duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return err
}

// MarketTrades lists trades out of opts.Symbol, or out of every universe
// symbol, for one unit of each.
func (q *QueryService) MarketTrades(ctx context.Context, r Reporter, opts MarketTradesOptions) error {
	return q.run(ctx, "market_trades", opts, func(ctx context.Context) error {
		snap, err := q.market.Refresh(ctx)
		if err != nil {
			return err
		}

		syms := q.market.Universe()
		if opts.Symbol != "" {
			syms = []market.Symbol{q.resolve(opts.Symbol)}
		}

		trades := AvailableTrades(snap, market.UnitHoldings(syms), domain.DirectionFrom)
		selected := SelectMarketTrades(trades, syms, opts.TopOnly, opts.Profitable)
		r.Trades(ctx, []TradeGroup{{Trades: selected}}, TableOptions{MaxRows: opts.Count})
		return nil
	})
}

// MarketPrices lists catalog prices sorted by price.
func (q *QueryService) MarketPrices(ctx context.Context, r Reporter, opts MarketPricesOptions) error {
	return q.run(ctx, "market_prices", opts, func(ctx context.Context) error {
		snap, err := q.market.Refresh(ctx)
		if err != nil {
			return err
		}

		entries := snap.Catalog.Entries()
		slices.SortStableFunc(entries, func(a, b market.PriceEntry) int {
			if opts.Reverse {
				return b.Price.Cmp(a.Price)
			}
			return a.Price.Cmp(b.Price)
		})
		r.Prices(ctx, snap.Currency, truncate(entries, opts.Count))
		return nil
	})
}

// HoldingValue values every holding and their total. A holding without a
// price fails the whole action.
func (q *QueryService) HoldingValue(ctx context.Context, r Reporter, opts HoldingValueOptions) error {
	return q.run(ctx, "holding_value", opts, func(ctx context.Context) error {
		snap, err := q.market.Refresh(ctx)
		if err != nil {
			return err
		}

		values := make([]HoldingValue, 0, len(opts.Holdings))
		total := decimal.Zero
		for _, h := range opts.Holdings {
			price, err := snap.Catalog.Price(h.Symbol)
			if err != nil {
				return err
			}
			value := price.Mul(h.Quantity)
			total = total.Add(value)
			values = append(values, HoldingValue{
				Symbol:   h.Symbol,
				Quantity: h.Quantity,
				Price:    price,
				Value:    value,
			})
		}

		r.Holdings(ctx, snap.Currency, values, total)
		return nil
	})
}

// TopTrades shows the best trade out of each holding. With Watch it repeats
// every Interval until ctx is cancelled, which ends it without error.
func (q *QueryService) TopTrades(ctx context.Context, r Reporter, opts TopTradesOptions) error {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultWatchInterval
	}

	return q.run(ctx, "top_trades", opts, func(ctx context.Context) error {
		for {
			snap, err := q.market.Refresh(ctx)
			if err != nil {
				if opts.Watch && ctx.Err() != nil {
					return nil
				}
				return err
			}

			if obs, ok := r.(SnapshotObserver); ok {
				obs.Snapshot(ctx, snap)
			}
			trades := AvailableTrades(snap, opts.Holdings, domain.DirectionFrom)
			r.Trades(ctx, GroupTrades(trades, opts.Holdings), TableOptions{MaxRows: 1, NoHeader: true})

			if !opts.Watch {
				return nil
			}

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	})
}

// HoldingTrades lists trades touching each holding in the given direction.
func (q *QueryService) HoldingTrades(ctx context.Context, r Reporter, opts HoldingTradesOptions) error {
	return q.run(ctx, "holding_trades", opts, func(ctx context.Context) error {
		snap, err := q.market.Refresh(ctx)
		if err != nil {
			return err
		}

		trades := AvailableTrades(snap, opts.Holdings, opts.Direction)
		r.Trades(ctx, GroupTrades(trades, opts.Holdings), TableOptions{MaxRows: opts.Count})
		return nil
	})
}

// ProfitableTrades searches the universe and shows single trades or
// compounding chains whose ends pass the holding filters.
func (q *QueryService) ProfitableTrades(ctx context.Context, r Reporter, opts ProfitableTradesOptions) error {
	return q.run(ctx, "profitable_trades", opts, func(ctx context.Context) error {
		mode := "SINGLE"
		if opts.AllowChains {
			mode = "COMPOUND"
		}
		r.Message(ctx, fmt.Sprintf("searching for profitable trades (%s)", mode))

		snap, err := q.market.Refresh(ctx)
		if err != nil {
			return err
		}

		forest, err := q.search.BuildForest(ctx, snap, q.market.Universe(), opts.MaxDepth)
		if err != nil {
			return err
		}
		if len(forest) == 0 {
			r.Message(ctx, "no profitable trades available at this time.")
			return nil
		}

		held := market.HeldSymbols(opts.Holdings)
		if !opts.AllowChains {
			singles := SelectSingles(forest, held, opts.Direction, opts.Count)
			r.Trades(ctx, []TradeGroup{{Trades: singles}}, TableOptions{})
			return nil
		}

		for _, chain := range SelectChains(forest, held, opts.Direction) {
			r.Chain(ctx, chain, TableOptions{MaxRows: opts.Count, NoHeader: true})
		}
		return nil
	})
}

// resolve maps input to the registry spelling, upper-casing unknown symbols.
func (q *QueryService) resolve(input string) market.Symbol {
	if q.resolver != nil {
		if sym, ok := q.resolver.Resolve(input); ok {
			return market.Symbol(sym)
		}
	}
	return market.Symbol(strings.ToUpper(strings.TrimSpace(input)))
}

// run validates opts, then executes fn under a span tagged with a fresh
// run id. Errors leaving fn carry the run id.
func (q *QueryService) run(ctx context.Context, action string, opts any, fn func(context.Context) error) error {
	runID := uuid.NewString()

	ctx, span := q.tracer.Start(ctx, "query."+action,
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("currency", q.market.Currency()),
		),
	)
	defer span.End()

	start := time.Now()
	q.log.Info(ctx, "query started", "action", action, "run_id", runID)

	err := q.validateOptions(opts)
	if err == nil {
		err = fn(ctx)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			appErr.WithRunID(runID)
			q.log.Warn(ctx, "query failed", append([]any{"action", action}, appErr.LogArgs()...)...)
		} else {
			q.log.Warn(ctx, "query failed", "action", action, "run_id", runID, "error", err)
		}
	}

	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	)
	q.metrics.runs.Add(ctx, 1, attrs)
	q.metrics.duration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	q.log.Info(ctx, "query finished", "action", action, "run_id", runID, "outcome", outcome,
		"duration", time.Since(start))

	return err
}

func (q *QueryService) validateOptions(opts any) error {
	err := q.validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())),
			apperror.WithCause(err))
	}
	return apperror.New(apperror.CodeValidationError, apperror.WithCause(err))
}
