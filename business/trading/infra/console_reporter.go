// Package infra contains the output adapters for the trading context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/app"
	"github.com/fd1az/cryptoquery/business/trading/domain"
)

// Ensure ConsoleReporter implements app.Reporter.
var _ app.Reporter = (*ConsoleReporter)(nil)

var tradeHeaders = []string{
	"no", "l_sym", "l_price", "r_sym", "r_price", "conv_rate", "value_pre", "value_post", "ratio",
}

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   map[domain.Classification]lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
}

// NewConsoleReporter creates a ConsoleReporter writing to out, or to
// stdout when out is nil.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)
	cell := r.NewStyle().Padding(0, 1)

	return &ConsoleReporter{
		out:      out,
		renderer: r,
		styles: map[domain.Classification]lipgloss.Style{
			domain.Profitable: cell.Foreground(lipgloss.Color("#10B981")),
			domain.Acceptable: cell.Foreground(lipgloss.Color("#F59E0B")),
			domain.Bad:        cell.Foreground(lipgloss.Color("#EF4444")),
		},
		header: cell.Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		cell:   cell,
	}
}

// Trades prints one table per non-empty group.
func (r *ConsoleReporter) Trades(_ context.Context, groups []app.TradeGroup, opts app.TableOptions) {
	for _, g := range groups {
		if len(g.Trades) == 0 {
			continue
		}
		fmt.Fprintln(r.out, r.tradeTable(g.Trades, opts))
	}
}

// Chain prints the compounded ratio followed by the chain's trades.
func (r *ConsoleReporter) Chain(_ context.Context, chain domain.Chain, opts app.TableOptions) {
	fmt.Fprintf(r.out, "Chain ROI: %s (%s)\n", chain.Ratio().StringFixed(10), chain.String())
	fmt.Fprintln(r.out, r.tradeTable(chain.Evaluations(), opts))
}

// Prices prints "SYM: price" lines.
func (r *ConsoleReporter) Prices(_ context.Context, currency string, entries []market.PriceEntry) {
	for _, e := range entries {
		fmt.Fprintf(r.out, "%s: %s %s\n", e.Symbol, e.Price.String(), currency)
	}
}

// Holdings prints each holding's value and the total.
func (r *ConsoleReporter) Holdings(_ context.Context, currency string, values []app.HoldingValue, total decimal.Decimal) {
	for _, v := range values {
		fmt.Fprintf(r.out, "%s:\t%s %s\n", v.Symbol, v.Value.StringFixed(2), currency)
	}
	fmt.Fprintln(r.out, "--------------------")
	fmt.Fprintf(r.out, "TOTAL:\t%s %s\n", total.StringFixed(2), currency)
	fmt.Fprintln(r.out, "--------------------")
}

// Message prints msg on its own line.
func (r *ConsoleReporter) Message(_ context.Context, msg string) {
	fmt.Fprintln(r.out, msg)
}

func (r *ConsoleReporter) tradeTable(trades []domain.Evaluation, opts app.TableOptions) string {
	if opts.MaxRows > 0 && len(trades) > opts.MaxRows {
		trades = trades[:opts.MaxRows]
	}

	classes := make([]domain.Classification, len(trades))
	rows := make([][]string, len(trades))
	for i, e := range trades {
		classes[i] = e.Classification()
		rows[i] = []string{
			strconv.Itoa(i),
			string(e.Edge.Left),
			e.LeftPrice.String(),
			string(e.Edge.Right),
			e.RightPrice.String(),
			e.Edge.Rate.String(),
			e.StartingValue().String(),
			e.FinalValue().String(),
			e.Ratio().StringFixed(10),
		}
	}

	ratioCol := len(tradeHeaders) - 1
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.renderer.NewStyle().Foreground(lipgloss.Color("#374151"))).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.header
			case col == ratioCol && row >= 0 && row < len(classes):
				return r.styles[classes[row]]
			default:
				return r.cell
			}
		})
	if !opts.NoHeader {
		t = t.Headers(tradeHeaders...)
	}
	return t.String()
}
