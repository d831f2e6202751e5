// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// TradeRow is the best trade out of one holding.
type TradeRow struct {
	Holding    string
	Pair       string
	Quantity   decimal.Decimal
	StartValue decimal.Decimal
	FinalValue decimal.Decimal
	Ratio      decimal.Decimal
	// Class is "profitable", "acceptable" or "bad".
	Class string
}

// TradesComponent renders the latest trade rows with the ratio move since
// the previous refresh.
type TradesComponent struct {
	rows     []TradeRow
	previous map[string]decimal.Decimal
}

// NewTradesComponent creates an empty trades component.
func NewTradesComponent() *TradesComponent {
	return &TradesComponent{previous: make(map[string]decimal.Decimal)}
}

// Update replaces the rows, remembering the ratios being replaced.
func (t *TradesComponent) Update(rows []TradeRow) {
	prev := make(map[string]decimal.Decimal, len(t.rows))
	for _, r := range t.rows {
		prev[r.Holding] = r.Ratio
	}
	t.previous = prev
	t.rows = rows
}

// Rows returns the current rows.
func (t *TradesComponent) Rows() []TradeRow {
	return t.rows
}

// Trend returns "▲", "▼" or "" comparing row with the previous refresh.
func (t *TradesComponent) Trend(row TradeRow) string {
	prev, ok := t.previous[row.Holding]
	if !ok {
		return ""
	}
	switch row.Ratio.Cmp(prev) {
	case 1:
		return "▲"
	case -1:
		return "▼"
	}
	return ""
}

// View renders the trades component.
func (t *TradesComponent) View() string {
	if len(t.rows) == 0 {
		return "No trades available yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	classStyles := map[string]lipgloss.Style{
		"profitable": lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		"acceptable": lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		"bad":        lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("TOP TRADES"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-8s  %-14s  %14s  %14s  %14s  %s\n",
		"Holding", "Pair", "Quantity", "Value pre", "Value post", "Ratio")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", 86)) + "\n")

	for _, row := range t.rows {
		style, ok := classStyles[row.Class]
		if !ok {
			style = dimStyle
		}
		fmt.Fprintf(&b, "  %-8s  %-14s  %14s  %14s  %14s  %s %s\n",
			row.Holding,
			row.Pair,
			row.Quantity.String(),
			row.StartValue.StringFixed(2),
			row.FinalValue.StringFixed(2),
			style.Render(fmt.Sprintf("%-14s", row.Ratio.StringFixed(10))),
			t.Trend(row),
		)
	}

	return b.String()
}
