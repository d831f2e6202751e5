// Package asset holds the ordered universe of symbols tradeable on the
// exchange.
package asset

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is a thread-safe, insertion-ordered set of symbols.
type Registry struct {
	symbols []string
	index   map[string]int
	folded  map[string]string // upper-cased symbol -> symbol
	mu      sync.RWMutex
}

// NewRegistry creates a registry holding symbols in the given order.
// Blank entries are skipped and duplicates keep their first position.
func NewRegistry(symbols ...string) *Registry {
	r := &Registry{
		index:  make(map[string]int),
		folded: make(map[string]string),
	}
	for _, s := range symbols {
		_ = r.Register(s)
	}
	return r
}

// Register appends symbol. It fails on a blank or already known symbol.
func (r *Registry) Register(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return fmt.Errorf("asset: blank symbol")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[symbol]; exists {
		return fmt.Errorf("asset: %s already registered", symbol)
	}

	r.index[symbol] = len(r.symbols)
	r.symbols = append(r.symbols, symbol)
	if _, ok := r.folded[strings.ToUpper(symbol)]; !ok {
		r.folded[strings.ToUpper(symbol)] = symbol
	}
	return nil
}

// Has reports whether symbol is registered, matching case exactly.
func (r *Registry) Has(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[symbol]
	return ok
}

// Resolve maps user input to a registered symbol, ignoring case.
// "antv1" resolves to "ANTv1".
func (r *Registry) Resolve(input string) (string, bool) {
	input = strings.TrimSpace(input)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.index[input]; ok {
		return input, true
	}
	s, ok := r.folded[strings.ToUpper(input)]
	return s, ok
}

// Symbols returns a copy of the symbols in registration order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// Count returns the number of registered symbols.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.symbols)
}
