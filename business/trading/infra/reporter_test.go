package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	market "github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/business/trading/app"
	"github.com/fd1az/cryptoquery/business/trading/domain"
	"github.com/fd1az/cryptoquery/pkg/ui"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func eval(t *testing.T, left, right, leftPrice, rightPrice string) domain.Evaluation {
	t.Helper()
	e, ok := domain.EvaluateAt(
		market.TradePairEdge{Left: market.Symbol(left), Right: market.Symbol(right), Rate: d("2")},
		d(leftPrice), d(rightPrice), d("1"),
	)
	if !ok {
		t.Fatal("evaluation rejected")
	}
	return e
}

func TestConsoleReporter_Trades(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Trades(context.Background(), []app.TradeGroup{
		{Symbol: "A", Trades: []domain.Evaluation{eval(t, "A", "B", "1", "1.5"), eval(t, "A", "C", "1", "0.1")}},
		{Symbol: "Q"},
	}, app.TableOptions{MaxRows: 1})

	out := buf.String()
	for _, want := range []string{"l_sym", "ratio", "3.0000000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0.2000000000") {
		t.Errorf("MaxRows 1 should drop the second trade:\n%s", out)
	}
}

func TestConsoleReporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Trades(context.Background(), []app.TradeGroup{
		{Trades: []domain.Evaluation{eval(t, "A", "B", "1", "1.5")}},
	}, app.TableOptions{NoHeader: true})

	if strings.Contains(buf.String(), "l_price") {
		t.Errorf("header printed:\n%s", buf.String())
	}
}

func TestConsoleReporter_Chain(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	root := domain.NewRoot(eval(t, "A", "B", "1", "1"))
	root.Extend(eval(t, "B", "C", "1", "1"))

	r.Chain(context.Background(), root.Chains()[0], app.TableOptions{NoHeader: true})

	if !strings.Contains(buf.String(), "Chain ROI: 4.0000000000 (A -> B -> C)") {
		t.Errorf("chain line missing:\n%s", buf.String())
	}
}

func TestConsoleReporter_HoldingsAndPrices(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Holdings(context.Background(), "GBP", []app.HoldingValue{
		{Symbol: "BTC", Value: d("10.004")},
		{Symbol: "ETH", Value: d("2")},
	}, d("12.004"))
	r.Prices(context.Background(), "GBP", []market.PriceEntry{{Symbol: "BTC", Price: d("25000.5")}})

	out := buf.String()
	for _, want := range []string{"BTC:\t10.00 GBP", "TOTAL:\t12.00 GBP", "BTC: 25000.5 GBP"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestTUIReporter_SendsBestTradePerHolding(t *testing.T) {
	sender := &fakeSender{}
	r := NewTUIReporter(sender)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return at }

	r.Trades(context.Background(), []app.TradeGroup{
		{Symbol: "A", Trades: []domain.Evaluation{eval(t, "A", "B", "1", "1.5"), eval(t, "A", "C", "1", "0.1")}},
		{Symbol: "Q"},
	}, app.TableOptions{MaxRows: 1, NoHeader: true})

	if len(sender.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.msgs))
	}
	msg, ok := sender.msgs[0].(ui.TradesMsg)
	if !ok {
		t.Fatalf("message type %T", sender.msgs[0])
	}
	if len(msg.Rows) != 1 || msg.Rows[0].Pair != "A_B" || msg.Rows[0].Class != "profitable" {
		t.Errorf("rows = %+v", msg.Rows)
	}
	if !msg.At.Equal(at) {
		t.Errorf("At = %v", msg.At)
	}
}

func TestTUIReporter_SnapshotAndErrors(t *testing.T) {
	sender := &fakeSender{}
	r := NewTUIReporter(sender)

	snap := market.NewSnapshot(
		market.NewPriceCatalog("GBP", map[market.Symbol]decimal.Decimal{"A": d("1")}),
		market.NewTradeGraph(nil),
		time.Now(),
	)
	r.Snapshot(context.Background(), snap)
	r.Error(errors.New("boom"))

	if s, ok := sender.msgs[0].(ui.SnapshotMsg); !ok || s.Prices != 1 || s.Pairs != 0 {
		t.Errorf("snapshot message = %#v", sender.msgs[0])
	}
	if e, ok := sender.msgs[1].(ui.ErrorMsg); !ok || e.Err.Error() != "boom" {
		t.Errorf("error message = %#v", sender.msgs[1])
	}
}
