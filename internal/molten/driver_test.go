package molten

import "testing"

// TestFixedEmptyGraphEmptyRules is scenario S1: an empty hypergraph
// with an empty rule table reaches a fixed point in one iteration with
// no edges created.
func TestFixedEmptyGraphEmptyRules(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)
	rules := NewRelated[string]()

	inf, err := h.Fixed(rules, 0)
	if err != nil {
		t.Fatalf("fixed failed: %v", err)
	}
	if len(inf.Edges) != 0 {
		t.Errorf("expected no edges, got %d", len(inf.Edges))
	}
}

// TestFixedNoOpRuleSelfLoop is scenario S2: a single node carrying
// {a:1} with a no-op rule {a:1} -> {a:1} creates exactly one self-loop
// edge and reaches a fixed point.
func TestFixedNoOpRuleSelfLoop(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)

	n1, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus failed: %v", err)
	}

	aWave := Coalesce([]Particle[string]{NewParticle("a")})
	rel := NewRelation(aWave, aWave)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}

	inf, err := h.Fixed(rules, 0)
	if err != nil {
		t.Fatalf("fixed failed: %v", err)
	}
	if len(inf.Edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(inf.Edges))
	}

	edge, err := h.Edge(inf.Edges[0])
	if err != nil {
		t.Fatalf("edge lookup failed: %v", err)
	}
	if len(edge.Source) != 1 || edge.Source[0] != n1 || len(edge.Sink) != 1 || edge.Sink[0] != n1 {
		t.Errorf("expected a self-loop on node %d, got source=%v sink=%v", n1, edge.Source, edge.Sink)
	}
}

// TestFixedIterationBound is scenario S5: a self-producing rule hits
// the iteration bound rather than converging, and the error carries the
// iteration count and bound.
func TestFixedIterationBound(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)

	if _, err := h.Focus(NewParticle("a")); err != nil {
		t.Fatalf("focus failed: %v", err)
	}

	source := Coalesce([]Particle[string]{NewParticle("a")})
	sink := Coalesce([]Particle[string]{NewParticle("a"), NewParticle("b")})
	rel := NewRelation(source, sink)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}

	const bound = 5
	inf, err := h.Fixed(rules, bound)
	if err == nil {
		t.Fatalf("expected a Limit error, got none (inference converged with %d edges)", len(inf.Edges))
	}
	if !IsKind(err, KindLimit) {
		t.Fatalf("expected Limit error, got %v", err)
	}

	limitErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if limitErr.Iterations != bound {
		t.Errorf("expected iterations=%d, got %d", bound, limitErr.Iterations)
	}
	if limitErr.Bound != bound {
		t.Errorf("expected bound=%d, got %d", bound, limitErr.Bound)
	}
	if len(inf.Edges) == 0 {
		t.Errorf("expected the partial inference to have created at least one edge")
	}
}

// TestFixedMonotone is invariant 8: the set of edge labels only grows
// across a fixed run; a graph that has already reached its fixed point
// does not shrink on a second call.
func TestFixedMonotone(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)
	if _, err := h.Focus(NewParticle("a")); err != nil {
		t.Fatalf("focus failed: %v", err)
	}

	aWave := Coalesce([]Particle[string]{NewParticle("a")})
	rel := NewRelation(aWave, aWave)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}

	if _, err := h.Fixed(rules, 0); err != nil {
		t.Fatalf("first fixed failed: %v", err)
	}
	first := len(h.Edges(nil))

	if _, err := h.Fixed(rules, 0); err != nil {
		t.Fatalf("second fixed failed: %v", err)
	}
	second := len(h.Edges(nil))

	if second < first {
		t.Errorf("expected edge count to be non-decreasing, got %d then %d", first, second)
	}
}

// TestAncestorChainWalksPastGenerations builds a three-generation chain
// n1 -> n2 -> n3 (each hop a translated edge) and checks that
// ancestorChain, starting from the newest node, walks all the way back
// to the oldest one, in addition to the node itself.
func TestAncestorChainWalksPastGenerations(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)

	n1, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n1 failed: %v", err)
	}
	n2, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n2 failed: %v", err)
	}
	n3, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n3 failed: %v", err)
	}

	seed := NewRelation(Coalesce([]Particle[string]{NewParticle("a")}), Coalesce([]Particle[string]{NewParticle("a")}))
	if _, err := h.Translate([]Label{n1}, []Label{n2}, seed); err != nil {
		t.Fatalf("translate n1->n2 failed: %v", err)
	}
	if _, err := h.Translate([]Label{n2}, []Label{n3}, seed); err != nil {
		t.Fatalf("translate n2->n3 failed: %v", err)
	}

	chain, err := h.ancestorChain(n3)
	if err != nil {
		t.Fatalf("ancestorChain failed: %v", err)
	}

	seen := map[Label]bool{}
	for _, l := range chain {
		seen[l] = true
	}
	if len(chain) != 3 || !seen[n1] || !seen[n2] || !seen[n3] {
		t.Fatalf("expected ancestorChain(n3) to contain exactly {n1,n2,n3}, got %v", chain)
	}
}

// TestInferAncestralClosureRefiresRuleThroughHistory is driver.go's
// analogue of spec's S3 residue-chaining scenario: a chain n1 -> n2 ->
// n3 is seeded by translating with the same relation the rule table
// holds, and a fresh, still-independent node n4 carries the same
// particle. A single Infer call must fire the rule from the oldest
// ancestor n1 as well as from n3 itself — not just from the most
// recent generation — and must link n4 into n3's past, so n3's
// ancestor chain afterwards reaches n1, n2 and n4.
func TestInferAncestralClosureRefiresRuleThroughHistory(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)

	n1, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n1 failed: %v", err)
	}
	n2, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n2 failed: %v", err)
	}
	n3, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n3 failed: %v", err)
	}
	n4, err := h.Focus(NewParticle("a"))
	if err != nil {
		t.Fatalf("focus n4 failed: %v", err)
	}

	seed := NewRelation(Coalesce([]Particle[string]{NewParticle("a")}), Coalesce([]Particle[string]{NewParticle("a")}))
	if _, err := h.Translate([]Label{n1}, []Label{n2}, seed); err != nil {
		t.Fatalf("translate n1->n2 failed: %v", err)
	}
	if _, err := h.Translate([]Label{n2}, []Label{n3}, seed); err != nil {
		t.Fatalf("translate n2->n3 failed: %v", err)
	}

	aWave := Coalesce([]Particle[string]{NewParticle("a")})
	rel := NewRelation(aWave, aWave)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}

	inf, err := h.Infer(rules)
	if err != nil {
		t.Fatalf("infer failed: %v", err)
	}

	hasEdge := func(source, sink Label) bool {
		for _, l := range inf.Edges {
			e, err := h.Edge(l)
			if err != nil {
				continue
			}
			if len(e.Source) == 1 && e.Source[0] == source && len(e.Sink) == 1 && e.Sink[0] == sink {
				return true
			}
		}
		return false
	}

	if !hasEdge(n3, n4) {
		t.Errorf("expected an edge from the newest node n3 to n4, got edges %v", inf.Edges)
	}
	if !hasEdge(n1, n4) {
		t.Errorf("expected the rule to fire from the oldest ancestor n1 to n4, got edges %v", inf.Edges)
	}

	chain, err := h.ancestorChain(n3)
	if err != nil {
		t.Fatalf("ancestorChain failed: %v", err)
	}
	inChain := map[Label]bool{}
	for _, l := range chain {
		inChain[l] = true
	}
	if len(chain) != 4 || !inChain[n1] || !inChain[n2] || !inChain[n3] || !inChain[n4] {
		t.Fatalf("expected n3's ancestor chain to span all three generations plus n4, got chain %v", chain)
	}
}

// TestPropagateDiffusesSignalThenFixes exercises the driver harness
// entry point: Propagate should diffuse the signal into nodes, then
// run to a fixed point exactly as a direct Diffuse+Fixed call would.
func TestPropagateDiffusesSignalThenFixes(t *testing.T) {
	h := NewHypergraph[string](CoupleOnTranslate)
	signal := Coalesce([]Particle[string]{NewParticle("a")})

	aWave := Coalesce([]Particle[string]{NewParticle("a")})
	rel := NewRelation(aWave, aWave)
	rules := NewRelated[string]()
	if err := rules.Add(rel); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}

	inf, err := Propagate(h, signal, rules, 0)
	if err != nil {
		t.Fatalf("propagate failed: %v", err)
	}
	if len(h.Nodes(nil)) != 1 {
		t.Errorf("expected propagate to diffuse exactly one node, got %d", len(h.Nodes(nil)))
	}
	if len(inf.Edges) != 1 {
		t.Errorf("expected exactly one self-loop edge, got %d", len(inf.Edges))
	}
}
