package infra

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/app"
	"github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/pkg/ui"
	"github.com/fd1az/cryptoquery/pkg/ui/components"
)

// Ensure TUIReporter implements the reporter ports.
var (
	_ app.Reporter         = (*TUIReporter)(nil)
	_ app.SnapshotObserver = (*TUIReporter)(nil)
)

// Sender delivers messages to a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIReporter implements Reporter for the Bubble Tea TUI. It converts
// results into immutable messages; the UI goroutine owns all state.
type TUIReporter struct {
	program Sender
	now     func() time.Time
}

// NewTUIReporter creates a TUIReporter sending to program.
func NewTUIReporter(program Sender) *TUIReporter {
	return &TUIReporter{program: program, now: time.Now}
}

// Trades sends the first trade of every non-empty group as a row.
func (r *TUIReporter) Trades(_ context.Context, groups []app.TradeGroup, _ app.TableOptions) {
	rows := make([]components.TradeRow, 0, len(groups))
	for _, g := range groups {
		if len(g.Trades) == 0 {
			continue
		}
		rows = append(rows, tradeRow(g.Symbol, g.Trades[0]))
	}
	r.program.Send(ui.TradesMsg{Rows: rows, At: r.now()})
}

// Snapshot sends the snapshot's size and age.
func (r *TUIReporter) Snapshot(_ context.Context, snap *market.Snapshot) {
	r.program.Send(ui.SnapshotMsg{
		Pairs:     snap.Graph.Len(),
		Prices:    snap.Catalog.Len(),
		Currency:  snap.Currency,
		FetchedAt: snap.FetchedAt,
	})
}

// Chain sends a one-line summary of the chain.
func (r *TUIReporter) Chain(_ context.Context, chain domain.Chain, _ app.TableOptions) {
	r.program.Send(ui.LogMsg{Message: fmt.Sprintf("chain %s ROI %s", chain.String(), chain.Ratio().StringFixed(6))})
}

// Prices sends a summary line.
func (r *TUIReporter) Prices(_ context.Context, currency string, entries []market.PriceEntry) {
	r.program.Send(ui.LogMsg{Message: fmt.Sprintf("%d prices in %s", len(entries), currency)})
}

// Holdings sends the total value.
func (r *TUIReporter) Holdings(_ context.Context, currency string, _ []app.HoldingValue, total decimal.Decimal) {
	r.program.Send(ui.LogMsg{Message: fmt.Sprintf("holdings total %s %s", total.StringFixed(2), currency)})
}

// Message sends msg as a status line.
func (r *TUIReporter) Message(_ context.Context, msg string) {
	r.program.Send(ui.LogMsg{Message: msg})
}

// Error shows err in the error panel.
func (r *TUIReporter) Error(err error) {
	r.program.Send(ui.ErrorMsg{Err: err})
}

func tradeRow(holding market.Symbol, e domain.Evaluation) components.TradeRow {
	return components.TradeRow{
		Holding:    string(holding),
		Pair:       e.Edge.String(),
		Quantity:   e.Quantity,
		StartValue: e.StartingValue(),
		FinalValue: e.FinalValue(),
		Ratio:      e.Ratio(),
		Class:      e.Classification().String(),
	}
}
