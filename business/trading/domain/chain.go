package domain

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ChainNode is one trade in a search tree. A node owns its children; the
// parent link is a back-reference used for depth and compounded ratio.
type ChainNode struct {
	Current Evaluation
	Next    []*ChainNode

	parent     *ChainNode
	depth      int
	chainRatio decimal.Decimal
}

// NewRoot starts a tree at e.
func NewRoot(e Evaluation) *ChainNode {
	return &ChainNode{Current: e, depth: 1, chainRatio: e.Ratio()}
}

// Extend appends a child trade e to n and returns it.
func (n *ChainNode) Extend(e Evaluation) *ChainNode {
	child := &ChainNode{
		Current:    e,
		parent:     n,
		depth:      n.depth + 1,
		chainRatio: e.Ratio().Mul(n.chainRatio),
	}
	n.Next = append(n.Next, child)
	return child
}

// Parent returns the node this trade follows, or nil for a root.
func (n *ChainNode) Parent() *ChainNode { return n.parent }

// Depth is 1 for a root.
func (n *ChainNode) Depth() int { return n.depth }

// ChainRatio is the product of ratios from the root down to n.
func (n *ChainNode) ChainRatio() decimal.Decimal { return n.chainRatio }

// IsLeaf reports whether n has no profitable continuation.
func (n *ChainNode) IsLeaf() bool { return len(n.Next) == 0 }

// Chains returns every path from n to a leaf. A leaf yields [n].
func (n *ChainNode) Chains() []Chain {
	if n.IsLeaf() {
		return []Chain{{n}}
	}
	var out []Chain
	for _, child := range n.Next {
		for _, tail := range child.Chains() {
			out = append(out, append(Chain{n}, tail...))
		}
	}
	return out
}

// Chain is a root-to-leaf path; each hop's right symbol is the next hop's left.
type Chain []*ChainNode

// First returns the opening trade.
func (c Chain) First() *ChainNode { return c[0] }

// Last returns the closing trade.
func (c Chain) Last() *ChainNode { return c[len(c)-1] }

// Ratio is the compounded ratio of the whole chain.
func (c Chain) Ratio() decimal.Decimal { return c.Last().ChainRatio() }

// Evaluations returns the trades of c in order.
func (c Chain) Evaluations() []Evaluation {
	out := make([]Evaluation, len(c))
	for i, n := range c {
		out[i] = n.Current
	}
	return out
}

// String renders the route, e.g. "BTC -> ETH -> LTC".
func (c Chain) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c)+1)
	parts = append(parts, string(c.First().Current.Edge.Left))
	for _, n := range c {
		parts = append(parts, string(n.Current.Edge.Right))
	}
	return strings.Join(parts, " -> ")
}

// Forest is the set of search roots in universe order.
type Forest []*ChainNode

// Chains flattens the chains of every root, root order first.
func (f Forest) Chains() []Chain {
	var out []Chain
	for _, root := range f {
		out = append(out, root.Chains()...)
	}
	return out
}

// Nodes counts every node in the forest.
func (f Forest) Nodes() int {
	total := 0
	var walk func(n *ChainNode)
	walk = func(n *ChainNode) {
		total++
		for _, c := range n.Next {
			walk(c)
		}
	}
	for _, root := range f {
		walk(root)
	}
	return total
}

// SortChainsByRatio sorts chains by compounded ratio, highest first, keeping
// the order of equal ratios.
func SortChainsByRatio(chains []Chain) {
	slices.SortStableFunc(chains, func(a, b Chain) int {
		return b.Ratio().Cmp(a.Ratio())
	})
}
