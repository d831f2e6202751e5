package main

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/cryptoquery/business/market/domain"
	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/config"
	"github.com/fd1az/cryptoquery/internal/holdings"
)

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want command
	}{
		{
			name: "generic available-trades short flags",
			args: []string{"generic", "available-trades", "-c", "3", "-s", "BTC", "-t", "-p"},
			want: marketTradesCmd{Symbol: "BTC", Count: 3, TopOnly: true, Profitable: true},
		},
		{
			name: "generic available-trades long flags",
			args: []string{"generic", "available-trades", "--count", "2", "--symbol", "eth"},
			want: marketTradesCmd{Symbol: "eth", Count: 2},
		},
		{
			name: "generic prices",
			args: []string{"generic", "prices", "-r", "--count", "10"},
			want: marketPricesCmd{Count: 10, Reverse: true},
		},
		{
			name: "holding value",
			args: []string{"holding", "value"},
			want: holdingValueCmd{},
		},
		{
			name: "holding top-trades watch",
			args: []string{"holding", "top-trades", "--watch", "--interval", "5s"},
			want: topTradesCmd{Watch: true, Interval: 5 * time.Second},
		},
		{
			name: "tui implies watch",
			args: []string{"holding", "top-trades", "--tui"},
			want: topTradesCmd{Watch: true, TUI: true},
		},
		{
			name: "holding available-trades",
			args: []string{"holding", "available-trades", "--trades-to", "-c", "1"},
			want: holdingTradesCmd{Count: 1, To: true},
		},
		{
			name: "holding profitable-trades chains",
			args: []string{"holding", "profitable-trades", "--trades-from", "--allow-trade-chains", "--max-depth", "3"},
			want: profitableTradesCmd{From: true, AllowChains: true, MaxDepth: 3},
		},
		{
			name: "short aliases",
			args: []string{"holding", "profitable-trades", "--from", "--to", "--chains"},
			want: profitableTradesCmd{From: true, To: true, AllowChains: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := parseArgs(tt.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inv.cmd)
		})
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	inv, err := parseArgs([]string{
		"--config", "cq.yaml", "--currency", "usd", "--holdings", "h.json", "--log-level", "debug",
		"generic", "prices",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, globalOptions{
		ConfigPath:   "cq.yaml",
		Currency:     "usd",
		HoldingsPath: "h.json",
		LogLevel:     "debug",
	}, inv.global)

	cfg := &config.Config{}
	cfg.Query.Currency = "GBP"
	cfg.Query.HoldingsPath = "holdings.json"
	inv.global.apply(cfg)

	assert.Equal(t, "USD", cfg.Query.Currency)
	assert.Equal(t, "h.json", cfg.Query.HoldingsPath)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestParseArgs_Version(t *testing.T) {
	inv, err := parseArgs([]string{"--version"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, inv.global.Version)
	assert.Nil(t, inv.cmd)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code apperror.Code
	}{
		{"missing action", []string{"generic"}, apperror.CodeUnknownCommand},
		{"unknown action", []string{"generic", "volume"}, apperror.CodeUnknownCommand},
		{"unknown context", []string{"wallet", "value"}, apperror.CodeUnknownCommand},
		{"negative count", []string{"generic", "prices", "-c", "-1"}, apperror.CodeInvalidInput},
		{"depth too large", []string{"holding", "profitable-trades", "--max-depth", "11"}, apperror.CodeInvalidInput},
		{"bad log level", []string{"--log-level", "loud", "generic", "prices"}, apperror.CodeInvalidInput},
		{"bad currency", []string{"--currency", "G-B", "generic", "prices"}, apperror.CodeInvalidInput},
		{"unknown flag", []string{"holding", "value", "--watch"}, apperror.CodeInvalidInput},
		{"stray argument", []string{"holding", "value", "extra"}, apperror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, io.Discard)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.GetCode(err))
			assert.Equal(t, apperror.ExitUsage, apperror.ExitCodeOf(err))
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	_, err := parseArgs([]string{"generic", "prices", "-h"}, io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestInvocation_TUI(t *testing.T) {
	assert.True(t, invocation{cmd: topTradesCmd{Watch: true, TUI: true}}.tui())
	assert.False(t, invocation{cmd: topTradesCmd{Watch: true}}.tui())
	assert.False(t, invocation{cmd: marketPricesCmd{}}.tui())
}

func TestNeedsHoldings(t *testing.T) {
	assert.False(t, marketTradesCmd{}.needsHoldings())
	assert.False(t, marketPricesCmd{}.needsHoldings())
	assert.True(t, holdingValueCmd{}.needsHoldings())
	assert.True(t, topTradesCmd{}.needsHoldings())
	assert.True(t, holdingTradesCmd{}.needsHoldings())
	assert.True(t, profitableTradesCmd{}.needsHoldings())
}

func TestToHoldings(t *testing.T) {
	got := toHoldings([]holdings.Entry{
		{Symbol: "BTC", Quantity: decimal.RequireFromString("0.5")},
		{Symbol: "ETH", Quantity: decimal.NewFromInt(2)},
	})

	require.Len(t, got, 2)
	assert.Equal(t, domain.Symbol("BTC"), got[0].Symbol)
	assert.True(t, got[0].Quantity.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, domain.Symbol("ETH"), got[1].Symbol)
}
