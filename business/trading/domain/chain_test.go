package domain

import "testing"

func unitEval(t *testing.T, left, right, ratio string) Evaluation {
	t.Helper()
	e, ok := EvaluateAt(edge(left, right, "1"), d("1"), d(ratio), d("1"))
	if !ok {
		t.Fatalf("evaluation %s_%s rejected", left, right)
	}
	return e
}

func TestChainNode_Compounding(t *testing.T) {
	root := NewRoot(unitEval(t, "A", "B", "1.2"))
	child := root.Extend(unitEval(t, "B", "C", "1.1"))

	if !child.ChainRatio().Equal(d("1.32")) {
		t.Errorf("chain ratio = %s, want 1.32", child.ChainRatio())
	}
	if child.Depth() != 2 || root.Depth() != 1 {
		t.Errorf("depths = %d/%d, want 1/2", root.Depth(), child.Depth())
	}
	if child.Parent() != root || root.Parent() != nil {
		t.Error("parent links wrong")
	}
	if root.IsLeaf() || !child.IsLeaf() {
		t.Error("leaf flags wrong")
	}
}

func TestChainNode_Chains(t *testing.T) {
	root := NewRoot(unitEval(t, "A", "B", "1.2"))
	c1 := root.Extend(unitEval(t, "B", "C", "1.1"))
	c1.Extend(unitEval(t, "C", "D", "1.5"))
	root.Extend(unitEval(t, "B", "E", "1.3"))

	chains := root.Chains()
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2", len(chains))
	}
	if got := chains[0].String(); got != "A -> B -> C -> D" {
		t.Errorf("chain 0 = %q", got)
	}
	if got := chains[1].String(); got != "A -> B -> E" {
		t.Errorf("chain 1 = %q", got)
	}
	if !chains[0].Ratio().Equal(d("1.98")) {
		t.Errorf("chain 0 ratio = %s, want 1.98", chains[0].Ratio())
	}
	if chains[1].First() != root {
		t.Error("chains must start at the root")
	}
	if n := len(chains[0].Evaluations()); n != 3 {
		t.Errorf("evaluations = %d, want 3", n)
	}
}

func TestForest_LeafRootIsSingleTradeChain(t *testing.T) {
	forest := Forest{
		NewRoot(unitEval(t, "A", "B", "1.1")),
		NewRoot(unitEval(t, "C", "D", "1.4")),
	}

	chains := forest.Chains()
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2", len(chains))
	}
	for i, c := range chains {
		if len(c) != 1 {
			t.Errorf("chain %d has length %d, want 1", i, len(c))
		}
	}
	if forest.Nodes() != 2 {
		t.Errorf("nodes = %d, want 2", forest.Nodes())
	}

	SortChainsByRatio(chains)
	if chains[0].First().Current.Edge.Left != "C" {
		t.Errorf("highest ratio chain should start at C")
	}
}
