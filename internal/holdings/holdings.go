// Package holdings loads the user's holdings file: a JSON object mapping
// symbol to quantity.
package holdings

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/fd1az/cryptoquery/internal/apperror"
)

// Entry is one held symbol and its quantity.
type Entry struct {
	Symbol   string
	Quantity decimal.Decimal
}

// Resolver maps a symbol as typed to its canonical spelling.
type Resolver interface {
	Resolve(input string) (string, bool)
}

// Load reads the holdings file at path. When resolver is non-nil, symbols
// it knows are rewritten to their canonical spelling.
func Load(path string, resolver Resolver) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.New(apperror.CodeHoldingsLoadFailed,
			apperror.WithContext(path), apperror.WithCause(err))
	}
	defer f.Close()

	entries, err := Parse(f, resolver)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeHoldingsLoadFailed, path)
	}
	return entries, nil
}

// Parse decodes holdings from r. Entries are sorted by symbol; quantities
// of symbols that collapse to one canonical spelling are summed.
func Parse(r io.Reader, resolver Resolver) ([]Entry, error) {
	var raw map[string]decimal.Decimal
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, apperror.New(apperror.CodeHoldingsLoadFailed,
			apperror.WithContext("decode holdings"), apperror.WithCause(err))
	}

	merged := make(map[string]decimal.Decimal, len(raw))
	for sym, qty := range raw {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			return nil, apperror.New(apperror.CodeInvalidHolding,
				apperror.WithContext("blank symbol"))
		}
		if !qty.IsPositive() {
			return nil, apperror.New(apperror.CodeInvalidHolding,
				apperror.WithContext(fmt.Sprintf("%s: quantity must be positive, got %s", sym, qty)))
		}
		if resolver != nil {
			if canonical, ok := resolver.Resolve(sym); ok {
				sym = canonical
			}
		}
		merged[sym] = merged[sym].Add(qty)
	}

	entries := make([]Entry, 0, len(merged))
	for sym, qty := range merged {
		entries = append(entries, Entry{Symbol: sym, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Symbol < entries[j].Symbol
	})

	return entries, nil
}

// Symbols returns the held symbols in entry order.
func Symbols(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}
