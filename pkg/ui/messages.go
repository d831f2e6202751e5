package ui

import (
	"time"

	"github.com/fd1az/cryptoquery/pkg/ui/components"
)

// Message types for TUI updates. Values are computed by the caller; the
// UI only displays them.

// TradesMsg carries the best trade per holding from one refresh.
type TradesMsg struct {
	Rows []components.TradeRow
	At   time.Time
}

// SnapshotMsg describes the market snapshot behind the latest rows.
type SnapshotMsg struct {
	Pairs     int
	Prices    int
	Currency  string
	FetchedAt time.Time
}

// ErrorMsg is sent when a refresh or query fails.
type ErrorMsg struct {
	Err error
}

// LogMsg is a status line, e.g. "searching for profitable trades".
type LogMsg struct {
	Message string
}
