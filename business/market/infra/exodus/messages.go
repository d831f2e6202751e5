// Package exodus implements the market data sources against the Exodus
// exchange and pricing APIs.
package exodus

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// statusSuccess is the only status the exchange uses for usable payloads.
const statusSuccess = "success"

// PairsResponse is the body of GET /v2/pairs. Records stay raw so a bad one
// is dropped on its own.
type PairsResponse struct {
	Status string     `json:"status"`
	Data   []RawValue `json:"data"`
}

// PairRecord is one element of PairsResponse.Data.
type PairRecord struct {
	Pair string   `json:"pair"`
	Rate RawValue `json:"rate"`
}

// PriceRequest is the body of POST /current-price.
type PriceRequest struct {
	Assets PriceAssets `json:"assets"`
}

// PriceAssets lists the symbols to price and the currencies to price them in.
type PriceAssets struct {
	From []string `json:"from"`
	To   []string `json:"to"`
}

// PriceResponse maps symbol to currency to price, e.g. {"BTC":{"GBP":25000}}.
type PriceResponse map[string]RawValue

// RawValue holds an undecoded JSON value.
type RawValue []byte

// UnmarshalJSON stores the raw bytes.
func (r *RawValue) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

var errNotNumber = errors.New("not a JSON number")

// Decimal parses a bare JSON number. Strings, null, objects and arrays are
// rejected.
func (r RawValue) Decimal() (decimal.Decimal, error) {
	b := bytes.TrimSpace(r)
	if len(b) == 0 {
		return decimal.Zero, errNotNumber
	}
	if c := b[0]; c != '-' && (c < '0' || c > '9') {
		return decimal.Zero, fmt.Errorf("%w: %s", errNotNumber, b)
	}
	return decimal.NewFromString(string(b))
}
