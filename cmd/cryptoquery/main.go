// Package main is the entry point for cryptoquery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fd1az/cryptoquery/business/market"
	marketDI "github.com/fd1az/cryptoquery/business/market/di"
	marketDomain "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading"
	"github.com/fd1az/cryptoquery/business/trading/app"
	tradingDI "github.com/fd1az/cryptoquery/business/trading/di"
	"github.com/fd1az/cryptoquery/business/trading/infra"
	"github.com/fd1az/cryptoquery/internal/apm"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/config"
	"github.com/fd1az/cryptoquery/internal/health"
	"github.com/fd1az/cryptoquery/internal/holdings"
	"github.com/fd1az/cryptoquery/internal/logger"
	"github.com/fd1az/cryptoquery/internal/metrics"
	"github.com/fd1az/cryptoquery/internal/monolith"
	"github.com/fd1az/cryptoquery/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(apperror.ExitCodeOf(err))
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	inv, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	if inv.global.Version {
		fmt.Fprintf(stdout, "cryptoquery %s (commit: %s, built: %s)\n", version, commit, buildDate)
		return nil
	}

	cfg, err := config.Load(inv.global.ConfigPath)
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}
	inv.global.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}

	// Logs are discarded while the TUI owns the terminal.
	logOut := stderr
	if inv.tui() {
		logOut = io.Discard
	}
	log := logger.New(logOut, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)

	traceProvider, err := apm.NewTraceProvider(ctx, apm.Config{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
		Insecure:    cfg.Telemetry.OTLPInsecure,
		Writer:      stderr,
	}, log)
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}
	defer func() {
		if err := traceProvider.Stop(); err != nil {
			log.Warn(ctx, "failed to flush traces", "error", err)
		}
	}()

	metricsCfg := metrics.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Prometheus:  cfg.Telemetry.Prometheus,
		Insecure:    cfg.Telemetry.OTLPInsecure,
	}
	if cfg.Telemetry.OTLPMetrics {
		metricsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
		metricsCfg.OTLPHeaders = apm.ParseHeaders(cfg.Telemetry.OTLPHeaders)
	}
	meterProvider, err := metrics.NewMetricProvider(ctx, metricsCfg)
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "failed to flush metrics", "error", err)
		}
	}()

	log.Debug(ctx, "starting cryptoquery", "version", version, "environment", cfg.App.Environment)

	mono := monolith.New(cfg, log)
	modules := []monolith.Module{
		&market.Module{},
		&trading.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	queries := tradingDI.GetQueryService(mono.Services())

	var held []marketDomain.Holding
	if inv.cmd.needsHoldings() {
		entries, err := holdings.Load(cfg.Query.HoldingsPath, mono.AssetRegistry())
		if err != nil {
			return err
		}
		held = toHoldings(entries)
		log.Debug(ctx, "holdings loaded", "path", cfg.Query.HoldingsPath, "count", len(held))
	}

	if c, ok := inv.cmd.(topTradesCmd); ok && c.Watch {
		stop := startWatchServers(ctx, cfg, mono, meterProvider, log)
		defer stop()
	}

	query := func(ctx context.Context, r app.Reporter) error {
		return dispatch(ctx, queries, r, inv.cmd, held, cfg)
	}

	if inv.tui() {
		return runTUI(ctx, query)
	}
	return query(ctx, infra.NewConsoleReporter(stdout))
}

// startWatchServers serves health and metrics endpoints for the lifetime of
// a watch loop. The returned func stops them.
func startWatchServers(ctx context.Context, cfg *config.Config, mono *monolith.App, mp metrics.MetricProvider, log logger.LoggerInterface) func() {
	var stops []func(context.Context) error

	if cfg.Health.Enabled {
		hs := health.NewServer(cfg.Health.Port, version, log)
		hs.RegisterCheck("snapshot", marketDI.GetMarketService(mono.Services()).FreshnessCheck(cfg.Health.MaxSnapshot))
		hs.Start(ctx)
		stops = append(stops, hs.Stop)
	}

	if handler := mp.Handler(); handler != nil {
		ms := metrics.NewServer(cfg.Telemetry.PrometheusPort, handler, log)
		ms.Start(ctx)
		stops = append(stops, ms.Stop)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, stop := range stops {
			if err := stop(shutdownCtx); err != nil {
				log.Warn(shutdownCtx, "failed to stop server", "error", err)
			}
		}
	}
}

// runTUI runs query on a background goroutine and renders its reports until
// the user quits or ctx is cancelled.
func runTUI(ctx context.Context, query func(context.Context, app.Reporter) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := ui.NewProgram(ui.New("cryptoquery"))
	reporter := infra.NewTUIReporter(program)

	errCh := make(chan error, 1)
	go func() {
		err := query(ctx, reporter)
		if err != nil {
			reporter.Error(err)
		}
		errCh <- err
	}()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	runErr := program.Run()
	cancel()

	queryErr := <-errCh
	if runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	return queryErr
}
