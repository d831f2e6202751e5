package exodus

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/cryptoquery/business/market/app"
	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/circuitbreaker"
	"github.com/fd1az/cryptoquery/internal/httpclient"
	"github.com/fd1az/cryptoquery/internal/logger"
	"github.com/fd1az/cryptoquery/internal/ratelimit"
)

// Ensure Client implements both market sources.
var (
	_ app.PairSource  = (*Client)(nil)
	_ app.PriceSource = (*Client)(nil)
)

const (
	tracerName = "exodus"
	meterName  = "exodus"

	DefaultPricingURL  = "https://pricing.a.exodus.io"
	DefaultExchangeURL = "https://exchange.exodus.io"

	pairsEndpoint        = "/v2/pairs"
	currentPriceEndpoint = "/current-price"
)

// Config holds the Exodus client settings.
type Config struct {
	PricingURL  string
	ExchangeURL string
	// RequestTimeout bounds each call; zero waits indefinitely.
	RequestTimeout    time.Duration
	RequestsPerMinute int
	CircuitBreaker    bool
}

// DefaultConfig returns the public endpoints with a 30s timeout.
func DefaultConfig() Config {
	return Config{
		PricingURL:     DefaultPricingURL,
		ExchangeURL:    DefaultExchangeURL,
		RequestTimeout: 30 * time.Second,
		CircuitBreaker: true,
	}
}

type clientMetrics struct {
	malformed metric.Int64Counter
	records   metric.Int64Counter
}

// Client fetches pairs and prices from Exodus.
type Client struct {
	exchange httpclient.Client
	pricing  httpclient.Client
	limiter  *ratelimit.Limiter
	breaker  *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger   logger.LoggerInterface
	tracer   trace.Tracer
	metrics  *clientMetrics
}

// NewClient creates a client for cfg.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.PricingURL == "" {
		cfg.PricingURL = DefaultPricingURL
	}
	if cfg.ExchangeURL == "" {
		cfg.ExchangeURL = DefaultExchangeURL
	}

	tracer := otel.Tracer(tracerName)

	exchange, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("exodus-exchange"),
		httpclient.WithBaseURL(cfg.ExchangeURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(tracer),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange client: %w", err)
	}

	pricing, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("exodus-pricing"),
		httpclient.WithBaseURL(cfg.PricingURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pricing client: %w", err)
	}

	c := &Client{
		exchange: exchange,
		pricing:  pricing,
		limiter:  ratelimit.New(cfg.RequestsPerMinute),
		logger:   log,
		tracer:   tracer,
	}

	if cfg.CircuitBreaker {
		cbCfg := circuitbreaker.DefaultConfig("exodus")
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}
		c.breaker = circuitbreaker.New[*httpclient.Response](cbCfg)
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.malformed, err = meter.Int64Counter(
		"exodus_malformed_records_total",
		metric.WithDescription("Pair or price records dropped as malformed"),
	)
	if err != nil {
		return err
	}

	c.metrics.records, err = meter.Int64Counter(
		"exodus_records_total",
		metric.WithDescription("Pair or price records accepted"),
	)
	return err
}

// FetchPairs returns the exchange's trade pairs in response order.
func (c *Client) FetchPairs(ctx context.Context) ([]domain.TradePairEdge, error) {
	ctx, span := c.tracer.Start(ctx, "exodus.fetch_pairs")
	defer span.End()

	resp, err := c.call(ctx, func() (*httpclient.Response, error) {
		return c.exchange.NewRequest(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "pairs")),
			httpclient.WithResponseErrorHandler(exodusErrorHandler),
		).Get(ctx, pairsEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		return nil, wrapUnavailable(err, "fetch pairs")
	}

	var body PairsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext("decode pairs"), apperror.WithCause(err))
	}
	if body.Status != statusSuccess {
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext(fmt.Sprintf("pairs status %q", body.Status)))
	}

	edges := make([]domain.TradePairEdge, 0, len(body.Data))
	dropped := 0
	for _, raw := range body.Data {
		edge, err := parsePairRecord(raw)
		if err != nil {
			dropped++
			c.logger.Debug(ctx, "dropping malformed pair record", "record", string(raw), "error", err)
			continue
		}
		edges = append(edges, edge)
	}

	c.countRecords(ctx, "pair", len(edges), dropped)
	span.SetAttributes(
		attribute.Int("pairs", len(edges)),
		attribute.Int("dropped", dropped),
	)

	return edges, nil
}

func parsePairRecord(raw RawValue) (domain.TradePairEdge, error) {
	var rec PairRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.TradePairEdge{}, err
	}
	rate, err := rec.Rate.Decimal()
	if err != nil {
		return domain.TradePairEdge{}, apperror.New(apperror.CodeMalformedPair,
			apperror.WithContext(rec.Pair), apperror.WithCause(err))
	}
	return domain.ParsePair(rec.Pair, rate)
}

// FetchPrices returns prices of symbols in currency. Symbols the API omits,
// prices it without currency, or prices with a malformed or negative value
// are left out of the result.
func (c *Client) FetchPrices(ctx context.Context, symbols []domain.Symbol, currency string) (map[domain.Symbol]decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "exodus.fetch_prices",
		trace.WithAttributes(
			attribute.Int("symbols", len(symbols)),
			attribute.String("currency", currency),
		),
	)
	defer span.End()

	prices := make(map[domain.Symbol]decimal.Decimal, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	from := make([]string, len(symbols))
	for i, s := range symbols {
		from[i] = string(s)
	}
	req := PriceRequest{Assets: PriceAssets{From: from, To: []string{currency}}}

	resp, err := c.call(ctx, func() (*httpclient.Response, error) {
		return c.pricing.NewRequest(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "current-price")),
			httpclient.WithResponseErrorHandler(exodusErrorHandler),
		).SetBody(req).Post(ctx, currentPriceEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		return nil, wrapUnavailable(err, "fetch prices")
	}

	var body PriceResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext("decode prices"), apperror.WithCause(err))
	}

	dropped := 0
	for sym, raw := range body {
		price, ok := parsePriceRecord(raw, currency)
		if !ok {
			dropped++
			c.logger.Debug(ctx, "dropping price record", "symbol", sym, "record", string(raw))
			continue
		}
		prices[domain.Symbol(sym)] = price
	}

	c.countRecords(ctx, "price", len(prices), dropped)
	span.SetAttributes(
		attribute.Int("prices", len(prices)),
		attribute.Int("dropped", dropped),
	)

	return prices, nil
}

func parsePriceRecord(raw RawValue, currency string) (decimal.Decimal, bool) {
	var quotes map[string]RawValue
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return decimal.Zero, false
	}
	v, ok := quotes[currency]
	if !ok {
		return decimal.Zero, false
	}
	price, err := v.Decimal()
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

// call paces and guards one HTTP round trip.
func (c *Client) call(ctx context.Context, fn func() (*httpclient.Response, error)) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func (c *Client) countRecords(ctx context.Context, kind string, accepted, dropped int) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	c.metrics.records.Add(ctx, int64(accepted), attrs)
	if dropped > 0 {
		c.metrics.malformed.Add(ctx, int64(dropped), attrs)
	}
}

func wrapUnavailable(err error, op string) error {
	if apperror.IsAppError(err) {
		return apperror.Wrap(err, apperror.CodeExchangeUnavailable, op)
	}
	return apperror.External(apperror.CodeExchangeUnavailable, op, err)
}

// APIError is a non-2xx answer from Exodus.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exodus API error %d: %s", e.StatusCode, e.Body)
}

// exodusErrorHandler treats any non-2xx status as an error, as the API
// reports failures only through the status code.
func exodusErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	const maxBody = 256
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &APIError{StatusCode: statusCode, Body: string(body)}
}
