package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/app"
	tradingDomain "github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/config"
	"github.com/fd1az/cryptoquery/internal/holdings"
)

const usage = `usage: cryptoquery [--config path] [--currency GBP] [--holdings holdings.json] <context> <action> [flags]

contexts and actions:
  generic available-trades   [-c N] [-s SYMBOL] [-t] [-p]
  generic prices             [-c N] [-r]
  holding value
  holding top-trades         [--watch] [--interval 2s] [--tui]
  holding available-trades   [-c N] [--trades-from] [--trades-to]
  holding profitable-trades  [-c N] [--trades-from] [--trades-to] [--allow-trade-chains] [--max-depth N]
`

// globalOptions are the flags accepted before the context.
type globalOptions struct {
	ConfigPath   string
	Currency     string `validate:"omitempty,alphanum,max=10"`
	HoldingsPath string
	LogLevel     string `validate:"omitempty,oneof=debug info warn error"`
	Version      bool
}

// apply overrides cfg with the flags that were given.
func (g globalOptions) apply(cfg *config.Config) {
	if g.Currency != "" {
		cfg.Query.Currency = strings.ToUpper(g.Currency)
	}
	if g.HoldingsPath != "" {
		cfg.Query.HoldingsPath = g.HoldingsPath
	}
	if g.LogLevel != "" {
		cfg.App.LogLevel = g.LogLevel
	}
}

// command is one parsed action. The set is closed: dispatch switches over
// every implementation.
type command interface {
	needsHoldings() bool
}

type marketTradesCmd struct {
	Symbol     string `validate:"omitempty,max=32"`
	Count      int    `validate:"gte=0"`
	TopOnly    bool
	Profitable bool
}

type marketPricesCmd struct {
	Count   int `validate:"gte=0"`
	Reverse bool
}

type holdingValueCmd struct{}

type topTradesCmd struct {
	Watch    bool
	Interval time.Duration `validate:"gte=0"`
	TUI      bool
}

type holdingTradesCmd struct {
	Count int `validate:"gte=0"`
	From  bool
	To    bool
}

type profitableTradesCmd struct {
	Count       int `validate:"gte=0"`
	From        bool
	To          bool
	AllowChains bool
	// MaxDepth of zero uses query.max_depth.
	MaxDepth int `validate:"gte=0,lte=10"`
}

func (marketTradesCmd) needsHoldings() bool     { return false }
func (marketPricesCmd) needsHoldings() bool     { return false }
func (holdingValueCmd) needsHoldings() bool     { return true }
func (topTradesCmd) needsHoldings() bool        { return true }
func (holdingTradesCmd) needsHoldings() bool    { return true }
func (profitableTradesCmd) needsHoldings() bool { return true }

// invocation is a fully parsed command line.
type invocation struct {
	global globalOptions
	cmd    command
}

// tui reports whether the invocation renders with the terminal UI.
func (inv invocation) tui() bool {
	c, ok := inv.cmd.(topTradesCmd)
	return ok && c.TUI
}

var validate = validator.New()

// parseArgs parses args into an invocation. flag.ErrHelp is returned as is
// when help was requested.
func parseArgs(args []string, stderr io.Writer) (invocation, error) {
	var inv invocation

	fs := newFlagSet("cryptoquery", stderr)
	fs.StringVar(&inv.global.ConfigPath, "config", "", "path to configuration file")
	fs.StringVar(&inv.global.Currency, "currency", "", "currency to operate in (default from config, GBP)")
	fs.StringVar(&inv.global.HoldingsPath, "holdings", "", "path to the holdings file (default from config, holdings.json)")
	fs.StringVar(&inv.global.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&inv.global.Version, "version", false, "show version information")
	if err := fs.Parse(args); err != nil {
		return inv, usageError(err)
	}
	if err := validateStruct(inv.global); err != nil {
		return inv, err
	}
	if inv.global.Version {
		return inv, nil
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return inv, apperror.Validation(apperror.CodeUnknownCommand, "expected <generic|holding> <action>")
	}

	cmd, err := parseCommand(rest[0], rest[1], rest[2:], stderr)
	if err != nil {
		return inv, err
	}
	inv.cmd = cmd
	return inv, nil
}

func parseCommand(scope, action string, args []string, stderr io.Writer) (command, error) {
	name := scope + " " + action
	fs := newFlagSet(name, stderr)

	var cmd command
	switch name {
	case "generic available-trades":
		c := &marketTradesCmd{}
		intFlag(fs, &c.Count, "count", "c", "maximum rows per symbol (0 = all)")
		stringFlag(fs, &c.Symbol, "symbol", "s", "only show trades out of this symbol")
		boolFlag(fs, &c.TopOnly, "top-only", "t", "only show the best trade for each symbol")
		boolFlag(fs, &c.Profitable, "profitable", "p", "only show profitable trades")
		cmd = c

	case "generic prices":
		c := &marketPricesCmd{}
		intFlag(fs, &c.Count, "count", "c", "maximum rows to show (0 = all)")
		boolFlag(fs, &c.Reverse, "reverse", "r", "sort prices high to low")
		cmd = c

	case "holding value":
		cmd = &holdingValueCmd{}

	case "holding top-trades":
		c := &topTradesCmd{}
		fs.BoolVar(&c.Watch, "watch", false, "keep refreshing the best trades")
		fs.DurationVar(&c.Interval, "interval", 0, "pause between refreshes (default from config, 2s)")
		fs.BoolVar(&c.TUI, "tui", false, "render the watch loop in a terminal UI")
		cmd = c

	case "holding available-trades":
		c := &holdingTradesCmd{}
		intFlag(fs, &c.Count, "count", "c", "maximum rows per holding (0 = all)")
		boolFlag(fs, &c.From, "trades-from", "from", "show trades out of held symbols")
		boolFlag(fs, &c.To, "trades-to", "to", "show trades into held symbols")
		cmd = c

	case "holding profitable-trades":
		c := &profitableTradesCmd{}
		intFlag(fs, &c.Count, "count", "c", "maximum rows to show (0 = all)")
		boolFlag(fs, &c.From, "trades-from", "from", "show trades out of held symbols")
		boolFlag(fs, &c.To, "trades-to", "to", "show trades into held symbols")
		boolFlag(fs, &c.AllowChains, "allow-trade-chains", "chains", "search compounding trade chains")
		fs.IntVar(&c.MaxDepth, "max-depth", 0, "maximum chain length (default from config, 5)")
		cmd = c

	default:
		return nil, apperror.Validation(apperror.CodeUnknownCommand, name)
	}

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " ")))
	}

	// --tui implies --watch.
	if c, ok := cmd.(*topTradesCmd); ok && c.TUI {
		c.Watch = true
	}

	cmd = deref(cmd)
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func deref(cmd command) command {
	switch c := cmd.(type) {
	case *marketTradesCmd:
		return *c
	case *marketPricesCmd:
		return *c
	case *holdingValueCmd:
		return *c
	case *topTradesCmd:
		return *c
	case *holdingTradesCmd:
		return *c
	case *profitableTradesCmd:
		return *c
	}
	return cmd
}

// dispatch runs cmd against the query service.
func dispatch(ctx context.Context, q *app.QueryService, r app.Reporter, cmd command, held []domain.Holding, cfg *config.Config) error {
	switch c := cmd.(type) {
	case marketTradesCmd:
		return q.MarketTrades(ctx, r, app.MarketTradesOptions{
			Symbol:     c.Symbol,
			Count:      c.Count,
			TopOnly:    c.TopOnly,
			Profitable: c.Profitable,
		})

	case marketPricesCmd:
		return q.MarketPrices(ctx, r, app.MarketPricesOptions{
			Count:   c.Count,
			Reverse: c.Reverse,
		})

	case holdingValueCmd:
		return q.HoldingValue(ctx, r, app.HoldingValueOptions{Holdings: held})

	case topTradesCmd:
		interval := c.Interval
		if interval == 0 {
			interval = cfg.Query.WatchInterval
		}
		return q.TopTrades(ctx, r, app.TopTradesOptions{
			Holdings: held,
			Watch:    c.Watch,
			Interval: interval,
		})

	case holdingTradesCmd:
		return q.HoldingTrades(ctx, r, app.HoldingTradesOptions{
			Holdings:  held,
			Count:     c.Count,
			Direction: tradingDomain.DirectionOf(c.From, c.To),
		})

	case profitableTradesCmd:
		depth := c.MaxDepth
		if depth == 0 {
			depth = cfg.Query.MaxDepth
		}
		return q.ProfitableTrades(ctx, r, app.ProfitableTradesOptions{
			Holdings:    held,
			Count:       c.Count,
			Direction:   tradingDomain.DirectionOf(c.From, c.To),
			AllowChains: c.AllowChains,
			MaxDepth:    depth,
		})

	default:
		return apperror.New(apperror.CodeUnknownCommand, apperror.WithContext(fmt.Sprintf("%T", cmd)))
	}
}

// toHoldings converts loaded file entries into domain holdings.
func toHoldings(entries []holdings.Entry) []domain.Holding {
	out := make([]domain.Holding, len(entries))
	for i, e := range entries {
		out[i] = domain.Holding{Symbol: domain.Symbol(e.Symbol), Quantity: e.Quantity}
	}
	return out
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		if name != "cryptoquery" {
			fmt.Fprintf(stderr, "\n%s flags:\n", name)
			fs.PrintDefaults()
		}
	}
	return fs
}

func intFlag(fs *flag.FlagSet, p *int, name, short, help string) {
	fs.IntVar(p, name, 0, help)
	fs.IntVar(p, short, 0, "shorthand for --"+name)
}

func stringFlag(fs *flag.FlagSet, p *string, name, short, help string) {
	fs.StringVar(p, name, "", help)
	fs.StringVar(p, short, "", "shorthand for --"+name)
}

func boolFlag(fs *flag.FlagSet, p *bool, name, short, help string) {
	fs.BoolVar(p, name, false, help)
	fs.BoolVar(p, short, false, "shorthand for --"+name)
}

func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return apperror.New(apperror.CodeInvalidInput,
		apperror.WithCause(err), apperror.WithExitCode(apperror.ExitUsage))
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperror.Validation(apperror.CodeInvalidInput,
				fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	return nil
}
