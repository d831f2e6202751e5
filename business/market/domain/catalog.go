package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/cryptoquery/internal/apperror"
)

// PriceEntry is one symbol with its price.
type PriceEntry struct {
	Symbol Symbol
	Price  decimal.Decimal
}

// PriceCatalog maps symbols to prices in one reference currency. It is
// immutable once built; a refresh builds a new catalog.
type PriceCatalog struct {
	currency string
	prices   map[Symbol]decimal.Decimal
	order    []Symbol
}

// NewPriceCatalog copies prices into a new catalog quoted in currency.
func NewPriceCatalog(currency string, prices map[Symbol]decimal.Decimal) *PriceCatalog {
	c := &PriceCatalog{
		currency: currency,
		prices:   make(map[Symbol]decimal.Decimal, len(prices)),
		order:    make([]Symbol, 0, len(prices)),
	}
	for sym, p := range prices {
		c.prices[sym] = p
		c.order = append(c.order, sym)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c
}

// EmptyCatalog returns a catalog without prices.
func EmptyCatalog(currency string) *PriceCatalog {
	return NewPriceCatalog(currency, nil)
}

// Currency returns the reference currency.
func (c *PriceCatalog) Currency() string {
	return c.currency
}

// Lookup returns the price of sym. ok is false when the price is unknown,
// which is distinct from a zero price.
func (c *PriceCatalog) Lookup(sym Symbol) (price decimal.Decimal, ok bool) {
	price, ok = c.prices[sym]
	return price, ok
}

// Price returns the price of sym or a PRICE_NOT_FOUND error.
func (c *PriceCatalog) Price(sym Symbol) (decimal.Decimal, error) {
	price, ok := c.prices[sym]
	if !ok {
		return decimal.Zero, apperror.New(apperror.CodePriceNotFound,
			apperror.WithContext(fmt.Sprintf("%s in %s", sym, c.currency)))
	}
	return price, nil
}

// Entries lists the catalog ordered by symbol.
func (c *PriceCatalog) Entries() []PriceEntry {
	out := make([]PriceEntry, len(c.order))
	for i, sym := range c.order {
		out[i] = PriceEntry{Symbol: sym, Price: c.prices[sym]}
	}
	return out
}

// Len returns the number of priced symbols.
func (c *PriceCatalog) Len() int {
	return len(c.prices)
}
