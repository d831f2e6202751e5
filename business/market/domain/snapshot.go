package domain

import "time"

// Snapshot is one consistent view of the market: the catalog and graph
// fetched together by a single refresh.
type Snapshot struct {
	Catalog   *PriceCatalog
	Graph     *TradeGraph
	Currency  string
	FetchedAt time.Time
}

// EmptySnapshot returns a snapshot with no prices and no pairs.
func EmptySnapshot(currency string) *Snapshot {
	return &Snapshot{
		Catalog:  EmptyCatalog(currency),
		Graph:    EmptyGraph(),
		Currency: currency,
	}
}

// NewSnapshot bundles a catalog and graph.
func NewSnapshot(catalog *PriceCatalog, graph *TradeGraph, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Catalog:   catalog,
		Graph:     graph,
		Currency:  catalog.Currency(),
		FetchedAt: fetchedAt,
	}
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
